package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcrop/cropadvisory/internal/config"
	"github.com/smartcrop/cropadvisory/internal/upstream"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(config.OpenAIConfig{
		APIKey:             "sk-test",
		BaseURL:            srv.URL,
		CompletionModel:    "gpt-4o-mini",
		TranscriptionModel: "whisper-1",
	})
}

func TestChatCompletion(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
			MaxTokens   int     `json:"max_tokens"`
			Temperature float64 `json:"temperature"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		assert.Equal(t, 450, body.MaxTokens)
		assert.InDelta(t, 0.2, body.Temperature, 1e-9)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
			assert.Equal(t, "be brief", body.Messages[0].Content)
			assert.Equal(t, "user", body.Messages[1].Role)
			assert.Equal(t, "my wheat is yellow", body.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Apply urea."}}]}`)
	})

	resp, err := client.ChatCompletion(context.Background(), upstream.ChatRequest{
		System:      "be brief",
		User:        "my wheat is yellow",
		MaxTokens:   450,
		Temperature: 0.2,
	})
	require.NoError(t, err)

	content, err := upstream.ChatContent(resp)
	require.NoError(t, err)
	assert.Equal(t, "Apply urea.", content)
	assert.Equal(t, 1, calls)
}

func TestChatCompletion_ErrorIsNotRetried(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
	})

	_, err := client.ChatCompletion(context.Background(), upstream.ChatRequest{System: "s", User: "u"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream exploded")
	assert.Equal(t, 1, calls)
}

func TestTranscription(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))

		f, hdr, err := r.FormFile("file")
		if assert.NoError(t, err) {
			defer f.Close()
			assert.True(t, strings.HasSuffix(hdr.Filename, ".mp3"), "filename %q", hdr.Filename)
			data, _ := io.ReadAll(f)
			assert.Equal(t, "ID3-fake-audio", string(data))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"mere dhaan mein rog hai"}`)
	})

	path := filepath.Join(t.TempDir(), "clip.mp3")
	require.NoError(t, os.WriteFile(path, []byte("ID3-fake-audio"), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	resp, err := client.Transcription(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "mere dhaan mein rog hai", upstream.TranscriptText(resp))
}

func TestTranscription_NilFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Transcription(context.Background(), nil)
	require.Error(t, err)
}
