package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash-latest:generateContent"

// Degradation reasons carried on Completion when the upstream could not
// produce a usable reply.
const (
	DegradedUnavailable = "unavailable"
	DegradedBlocked     = "content_blocked"
	DegradedMalformed   = "malformed_response"
)

const (
	fallbackUnavailable = "The AI service is currently busy. Please try again in a moment."
	fallbackBlocked     = "I can't help with that request. Let's talk about your studies instead!"
	fallbackMalformed   = "Sorry, I couldn't come up with a response just now. Please try again."
)

// Completion is the outcome of one generation call. Degraded completions
// carry a user-facing fallback text and are persisted like any other reply;
// expected upstream failures never surface as errors.
type Completion struct {
	Text     string
	Degraded bool
	Reason   string
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	policy     RetryPolicy

	// sleep is swappable for tests
	sleep func(ctx context.Context, d time.Duration) error
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) { c.policy = p }
}

func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		policy:     DefaultRetryPolicy(),
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Complete sends the full conversation to the provider and returns its
// reply. Rate limiting and server errors are retried with backoff; if every
// attempt fails, or the provider blocks or garbles the response, the result
// is a degraded completion rather than an error. Only context cancellation
// and request-building failures return an error.
func (c *Client) Complete(ctx context.Context, turns []*Turn) (*Completion, error) {
	payload, err := json.Marshal(generateRequest{Contents: turns})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s?key=%s", c.baseURL, c.apiKey)

	for attempt := 0; attempt < c.policy.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		res, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// No backoff is owed after the last attempt
			if attempt < c.policy.MaxAttempts-1 {
				if serr := c.sleep(ctx, c.policy.backoff(attempt, http.Header{})); serr != nil {
					return nil, serr
				}
			}
			continue
		}

		body, readErr := io.ReadAll(res.Body)
		res.Body.Close()

		if res.StatusCode == http.StatusOK && readErr == nil {
			return parseCompletion(body), nil
		}

		if !retryable(res.StatusCode) {
			return &Completion{Text: fallbackUnavailable, Degraded: true, Reason: DegradedUnavailable}, nil
		}
		if attempt < c.policy.MaxAttempts-1 {
			if serr := c.sleep(ctx, c.policy.backoff(attempt, res.Header)); serr != nil {
				return nil, serr
			}
		}
	}

	return &Completion{Text: fallbackUnavailable, Degraded: true, Reason: DegradedUnavailable}, nil
}

// parseCompletion extracts the reply text from a 200 response. Text parts of
// the first candidate are concatenated; a block verdict or an unreadable body
// degrades instead of failing.
func parseCompletion(body []byte) *Completion {
	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return &Completion{Text: fallbackMalformed, Degraded: true, Reason: DegradedMalformed}
	}

	if parsed.PromptFeedback != nil && parsed.PromptFeedback.BlockReason != "" {
		return &Completion{Text: fallbackBlocked, Degraded: true, Reason: DegradedBlocked}
	}

	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil {
		return &Completion{Text: fallbackMalformed, Degraded: true, Reason: DegradedMalformed}
	}

	var sb strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return &Completion{Text: fallbackMalformed, Degraded: true, Reason: DegradedMalformed}
	}

	return &Completion{Text: text}
}
