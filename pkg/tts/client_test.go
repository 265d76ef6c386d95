package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Synthesize(t *testing.T) {
	var gotPath, gotKey string
	var gotBody synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := NewClient("secret", "voice-123", WithBaseURL(srv.URL))
	audio, err := c.Synthesize(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "/voice-123", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "eleven_multilingual_v2", gotBody.ModelID)
	assert.Equal(t, 0.5, gotBody.VoiceSettings.Stability)
	assert.Nil(t, gotBody.VoiceSettings.Speed)
}

func TestClient_SynthesizeSlow_UsesSlowVoiceSettings(t *testing.T) {
	var gotBody synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte("mp3"))
	}))
	defer srv.Close()

	c := NewClient("secret", "voice-123", WithBaseURL(srv.URL))
	_, err := c.SynthesizeSlow(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, 0.3, gotBody.VoiceSettings.Stability)
	require.NotNil(t, gotBody.VoiceSettings.Speed)
	assert.Equal(t, 0.7, *gotBody.VoiceSettings.Speed)
	require.NotNil(t, gotBody.VoiceSettings.UseSpeakerBoost)
	assert.False(t, *gotBody.VoiceSettings.UseSpeakerBoost)
}

func TestClient_Synthesize_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid key"}`))
	}))
	defer srv.Close()

	c := NewClient("bad", "voice-123", WithBaseURL(srv.URL))
	_, err := c.Synthesize(context.Background(), "hello")

	var upErr *UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
}

func TestClient_Synthesize_MissingCredentials(t *testing.T) {
	c := NewClient("", "", WithBaseURL("http://unused"))
	_, err := c.Synthesize(context.Background(), "hello")
	require.Error(t, err)
}
