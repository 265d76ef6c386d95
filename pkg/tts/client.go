package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

const modelID = "eleven_multilingual_v2"

type voiceSettings struct {
	Stability       float64  `json:"stability"`
	SimilarityBoost float64  `json:"similarity_boost"`
	Style           *float64 `json:"style,omitempty"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// normalSettings is the default narration voice; slowSettings is the
// deliberate pronunciation-practice variant.
var (
	normalSettings = voiceSettings{Stability: 0.5, SimilarityBoost: 0.5}
	slowSettings   = voiceSettings{
		Stability:       0.3,
		SimilarityBoost: 0.5,
		Style:           ptr(0.5),
		UseSpeakerBoost: ptr(false),
		Speed:           ptr(0.7),
	}
)

func ptr[T any](v T) *T { return &v }

// UpstreamError carries the provider's HTTP status so callers can relay it.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("tts upstream returned status %d: %s", e.StatusCode, e.Body)
}

// Client proxies speech synthesis to ElevenLabs.
type Client struct {
	apiKey     string
	voiceID    string
	baseURL    string
	httpClient *http.Client
}

type ClientOption func(*Client)

func WithBaseURL(url string) ClientOption {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey, voiceID string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:     apiKey,
		voiceID:    voiceID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize converts text to MP3 audio at normal speaking speed.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return c.synthesize(ctx, text, normalSettings)
}

// SynthesizeSlow converts text to MP3 audio at a reduced speaking speed.
func (c *Client) SynthesizeSlow(ctx context.Context, text string) ([]byte, error) {
	return c.synthesize(ctx, text, slowSettings)
}

func (c *Client) synthesize(ctx context.Context, text string, settings voiceSettings) ([]byte, error) {
	if c.apiKey == "" || c.voiceID == "" {
		return nil, fmt.Errorf("tts credentials are not configured")
	}

	payload, err := json.Marshal(synthesizeRequest{
		Text:          text,
		ModelID:       modelID,
		VoiceSettings: settings,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: res.StatusCode, Body: string(body)}
	}

	return body, nil
}
