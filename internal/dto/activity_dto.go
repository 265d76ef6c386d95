package dto

import "time"

// ActivityEventMessage is the watermill payload carried on the activity topic.
type ActivityEventMessage struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
