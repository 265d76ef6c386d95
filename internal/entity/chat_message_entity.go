package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sender roles as stored. The upstream provider uses a different vocabulary
// for assistant turns ("model"); that mapping lives in pkg/genai.
const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Role          string
	Content       string
	CreatedAt     time.Time
	DeletedAt     *time.Time
	IsDeleted     bool
}
