package service

import (
	"context"
	"encoding/json"

	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/pkg/logger"
	"cardes-ai-be/pkg/events"
	pkgNats "cardes-ai-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IActivityConsumerService interface {
	Consume(ctx context.Context) error
}

// activityConsumerService drains the in-process activity topic, records each
// event through the logger, and mirrors it to NATS when a publisher is
// configured. NATS failures are warnings, never retries.
type activityConsumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	natsPublisher *pkgNats.Publisher
	logger        logger.ILogger
}

func NewActivityConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsPublisher *pkgNats.Publisher,
	logger logger.ILogger,
) IActivityConsumerService {
	return &activityConsumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		natsPublisher: natsPublisher,
		logger:        logger,
	}
}

func (s *activityConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *activityConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ActivityEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("ACTIVITY", "Failed to unmarshal activity event", map[string]interface{}{
			"error": err.Error(),
		})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	s.logger.Info("ACTIVITY", "Activity recorded", map[string]interface{}{
		"type": payload.Type,
		"data": payload.Data,
	})

	if s.natsPublisher != nil {
		evt := events.BaseEvent{
			Type:       payload.Type,
			Data:       payload.Data,
			OccurredAt: payload.OccurredAt,
		}
		if err := s.natsPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("ACTIVITY", "Failed to mirror activity event to NATS", map[string]interface{}{
				"type":  payload.Type,
				"error": err.Error(),
			})
		}
	}

	msg.Ack()
}
