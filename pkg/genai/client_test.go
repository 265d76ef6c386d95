package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c := NewClient("test-key",
		WithBaseURL(serverURL),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}),
	)
	c.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return c
}

func okResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":` + mustJSON(text) + `}],"role":"model"}}]}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestClient_Complete_Success(t *testing.T) {
	var gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(okResponse("Photosynthesis converts light into energy.")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	turns := BuildTurns([]HistoryMessage{
		{Role: "user", Content: "What is photosynthesis?"},
	})

	got, err := c.Complete(context.Background(), turns)
	require.NoError(t, err)
	assert.False(t, got.Degraded)
	assert.Equal(t, "Photosynthesis converts light into energy.", got.Text)
	assert.Equal(t, "test-key", gotKey)
	require.Len(t, gotBody.Contents, 1)
	assert.Equal(t, RoleUser, gotBody.Contents[0].Role)
}

func TestClient_Complete_RetriesThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(okResponse("hello")))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "hi"}}))
	require.NoError(t, err)
	assert.False(t, got.Degraded)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, 3, calls)
}

func TestClient_Complete_ExhaustedRetriesDegrades(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "hi"}}))
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, DegradedUnavailable, got.Reason)
	assert.NotEmpty(t, got.Text)
	assert.Equal(t, 3, calls)
}

func TestClient_Complete_NoBackoffAfterFinalAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}),
	)
	var slept []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "hi"}}))
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, slept,
		"the exhausted final attempt returns without waiting")
}

func TestClient_Complete_NonRetryableDegradesImmediately(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "hi"}}))
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, 1, calls)
}

func TestClient_Complete_BlockedPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "bad"}}))
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, DegradedBlocked, got.Reason)
}

func TestClient_Complete_MalformedBodyDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "hi"}}))
	require.NoError(t, err)
	assert.True(t, got.Degraded)
	assert.Equal(t, DegradedMalformed, got.Reason)
}

func TestClient_Complete_MultiplePartsConcatenated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hello, "},{"text":"world."}],"role":"model"}}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	got, err := c.Complete(context.Background(), BuildTurns([]HistoryMessage{{Role: "user", Content: "hi"}}))
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", got.Text)
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}

	assert.Equal(t, 2*time.Second, p.backoff(0, http.Header{}))
	assert.Equal(t, 4*time.Second, p.backoff(1, http.Header{}))
	assert.Equal(t, 8*time.Second, p.backoff(2, http.Header{}))

	h := http.Header{}
	h.Set("Retry-After", "10")
	assert.Equal(t, 10*time.Second, p.backoff(0, h), "server hint wins when larger")

	h.Set("Retry-After", "1")
	assert.Equal(t, 4*time.Second, p.backoff(1, h), "exponential delay wins when larger")
}
