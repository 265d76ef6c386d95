package service

import (
	"context"
	"fmt"
	"time"

	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/internal/pkg/logger"
	"cardes-ai-be/pkg/ratelimit"

	"github.com/google/uuid"
)

// Synthesizer is the slice of the voice client the TTS service needs.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	SynthesizeSlow(ctx context.Context, text string) ([]byte, error)
}

type ITtsService interface {
	Synthesize(ctx context.Context, userId uuid.UUID, request *dto.SynthesizeSpeechRequest, slow bool) (*dto.SynthesizeSpeechResult, error)
}

type ttsService struct {
	synthesizer       Synthesizer
	usageCounter      *ratelimit.UsageCounter
	userService       IUserService
	activityPublisher IActivityPublisherService
	logger            logger.ILogger
	dailyLimit        int
}

func NewTtsService(
	synthesizer Synthesizer,
	usageCounter *ratelimit.UsageCounter,
	userService IUserService,
	activityPublisher IActivityPublisherService,
	logger logger.ILogger,
	dailyLimit int,
) ITtsService {
	return &ttsService{
		synthesizer:       synthesizer,
		usageCounter:      usageCounter,
		userService:       userService,
		activityPublisher: activityPublisher,
		logger:            logger,
		dailyLimit:        dailyLimit,
	}
}

// Synthesize proxies one text-to-speech request, charging it against the
// user's daily allowance. Privileged users are never charged.
func (ts *ttsService) Synthesize(ctx context.Context, userId uuid.UUID, request *dto.SynthesizeSpeechRequest, slow bool) (*dto.SynthesizeSpeechResult, error) {
	privileged, err := ts.userService.IsPrivileged(ctx, userId)
	if err != nil {
		return nil, err
	}

	if !privileged {
		key := fmt.Sprintf("tts:daily:%s", userId)
		allowed, err := ts.usageCounter.Allow(ctx, key, ts.dailyLimit, 24*time.Hour)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, &apperr.QuotaExceededError{
				Message: "You have reached your daily text-to-speech limit.",
				Limit:   ts.dailyLimit,
				Used:    ts.dailyLimit,
			}
		}
	}

	var audio []byte
	if slow {
		audio, err = ts.synthesizer.SynthesizeSlow(ctx, request.Text)
	} else {
		audio, err = ts.synthesizer.Synthesize(ctx, request.Text)
	}
	if err != nil {
		ts.logger.Error("TTS", "Speech synthesis failed", map[string]interface{}{
			"user_id": userId.String(),
			"slow":    slow,
			"error":   err.Error(),
		})
		return nil, err
	}

	ts.activityPublisher.PublishTtsSynthesized(ctx, userId, slow)

	return &dto.SynthesizeSpeechResult{
		Audio:       audio,
		ContentType: "audio/mpeg",
	}, nil
}
