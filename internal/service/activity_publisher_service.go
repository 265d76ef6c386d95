package service

import (
	"context"
	"encoding/json"
	"time"

	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

const (
	EventChatExchangeCompleted = "CHAT_EXCHANGE_COMPLETED"
	EventChatSessionCreated    = "CHAT_SESSION_CREATED"
	EventTtsSynthesized        = "TTS_SYNTHESIZED"
)

// IActivityPublisherService emits study-activity events onto the in-process
// bus. Publishing is best effort; a failure never fails the request that
// produced the activity.
type IActivityPublisherService interface {
	PublishChatSessionCreated(ctx context.Context, userId, sessionId uuid.UUID)
	PublishChatExchangeCompleted(ctx context.Context, userId, sessionId uuid.UUID, degraded bool, latency time.Duration)
	PublishTtsSynthesized(ctx context.Context, userId uuid.UUID, slow bool)
}

type activityPublisherService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewActivityPublisherService(
	pubSub *gochannel.GoChannel,
	topicName string,
	logger logger.ILogger,
) IActivityPublisherService {
	return &activityPublisherService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    logger,
	}
}

func (s *activityPublisherService) PublishChatSessionCreated(ctx context.Context, userId, sessionId uuid.UUID) {
	s.publish(EventChatSessionCreated, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId.String(),
	})
}

func (s *activityPublisherService) PublishChatExchangeCompleted(ctx context.Context, userId, sessionId uuid.UUID, degraded bool, latency time.Duration) {
	s.publish(EventChatExchangeCompleted, map[string]interface{}{
		"user_id":    userId.String(),
		"session_id": sessionId.String(),
		"degraded":   degraded,
		"latency_ms": latency.Milliseconds(),
	})
}

func (s *activityPublisherService) PublishTtsSynthesized(ctx context.Context, userId uuid.UUID, slow bool) {
	s.publish(EventTtsSynthesized, map[string]interface{}{
		"user_id": userId.String(),
		"slow":    slow,
	})
}

func (s *activityPublisherService) publish(eventType string, data map[string]interface{}) {
	if s.pubSub == nil {
		return
	}

	payload, err := json.Marshal(dto.ActivityEventMessage{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	})
	if err != nil {
		s.logger.Error("ACTIVITY", "Failed to marshal activity event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		s.logger.Warn("ACTIVITY", "Failed to publish activity event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}
