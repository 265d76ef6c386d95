package service

import (
	"context"
	"testing"

	"cardes-ai-be/internal/apperr"
	"cardes-ai-be/internal/dto"
	"cardes-ai-be/pkg/ratelimit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSynthesizer struct {
	normalCalls int
	slowCalls   int
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.normalCalls++
	return []byte("audio"), nil
}

func (f *fakeSynthesizer) SynthesizeSlow(ctx context.Context, text string) ([]byte, error) {
	f.slowCalls++
	return []byte("slow-audio"), nil
}

type fakeUserService struct{ privileged bool }

func (f *fakeUserService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	return nil, nil
}

func (f *fakeUserService) IsPrivileged(ctx context.Context, userId uuid.UUID) (bool, error) {
	return f.privileged, nil
}

func newTtsHarness(privileged bool) (ITtsService, *fakeSynthesizer) {
	synth := &fakeSynthesizer{}
	svc := NewTtsService(
		synth,
		ratelimit.NewUsageCounter(ratelimit.NewMemoryStore()),
		&fakeUserService{privileged: privileged},
		&fakeActivityPublisher{},
		nopLogger{},
		4,
	)
	return svc, synth
}

func TestTtsService_Synthesize_NormalAndSlow(t *testing.T) {
	svc, synth := newTtsHarness(false)
	userId := uuid.New()

	res, err := svc.Synthesize(context.Background(), userId, &dto.SynthesizeSpeechRequest{Text: "hello"}, false)
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), res.Audio)
	assert.Equal(t, "audio/mpeg", res.ContentType)

	res, err = svc.Synthesize(context.Background(), userId, &dto.SynthesizeSpeechRequest{Text: "hello"}, true)
	require.NoError(t, err)
	assert.Equal(t, []byte("slow-audio"), res.Audio)

	assert.Equal(t, 1, synth.normalCalls)
	assert.Equal(t, 1, synth.slowCalls)
}

func TestTtsService_Synthesize_DailyLimitEnforced(t *testing.T) {
	svc, synth := newTtsHarness(false)
	userId := uuid.New()

	for i := 0; i < 4; i++ {
		_, err := svc.Synthesize(context.Background(), userId, &dto.SynthesizeSpeechRequest{Text: "hi"}, false)
		require.NoError(t, err)
	}

	_, err := svc.Synthesize(context.Background(), userId, &dto.SynthesizeSpeechRequest{Text: "hi"}, false)
	var quotaErr *apperr.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, 4, quotaErr.Limit)
	assert.Equal(t, 4, synth.normalCalls, "the denied request must not reach the provider")
}

func TestTtsService_Synthesize_LimitIsPerUser(t *testing.T) {
	svc, _ := newTtsHarness(false)

	first := uuid.New()
	for i := 0; i < 4; i++ {
		_, err := svc.Synthesize(context.Background(), first, &dto.SynthesizeSpeechRequest{Text: "hi"}, false)
		require.NoError(t, err)
	}

	_, err := svc.Synthesize(context.Background(), uuid.New(), &dto.SynthesizeSpeechRequest{Text: "hi"}, false)
	assert.NoError(t, err, "another user's allowance is untouched")
}

func TestTtsService_Synthesize_PrivilegedBypassesLimit(t *testing.T) {
	svc, synth := newTtsHarness(true)
	userId := uuid.New()

	for i := 0; i < 10; i++ {
		_, err := svc.Synthesize(context.Background(), userId, &dto.SynthesizeSpeechRequest{Text: "hi"}, false)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, synth.normalCalls)
}
