// Package openai implements the upstream contract using the official OpenAI Go SDK.
//
// It uses the Chat Completions API for farmer advice and the Audio
// Transcription API (Whisper) for speech-to-text. Retries are disabled: a
// failed call is reported to the caller as-is.
package openai

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/smartcrop/cropadvisory/internal/config"
	"github.com/smartcrop/cropadvisory/internal/upstream"
)

// Client calls OpenAI for completions and transcriptions. It is safe for
// concurrent use and is meant to be constructed once per process.
type Client struct {
	sdk                openai.Client
	completionModel    string
	transcriptionModel string
}

// New creates a new OpenAI client from config.
func New(cfg config.OpenAIConfig) *Client {
	return NewWithHTTPClient(cfg, &http.Client{})
}

// NewWithHTTPClient is New with a caller-supplied HTTP client.
func NewWithHTTPClient(cfg config.OpenAIConfig, hc *http.Client) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(hc),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		sdk:                openai.NewClient(opts...),
		completionModel:    cfg.CompletionModel,
		transcriptionModel: cfg.TranscriptionModel,
	}
}

// Name returns the backend identifier.
func (c *Client) Name() string { return "openai" }

// ChatCompletion sends a system+user message pair to the Chat Completions API.
// The result is the SDK's *openai.ChatCompletion.
func (c *Client) ChatCompletion(ctx context.Context, req upstream.ChatRequest) (any, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.completionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, err
	}

	slog.Debug("completion received", "model", resp.Model, "choices", len(resp.Choices))
	return resp, nil
}

// Transcription uploads an audio file to the Transcription API. The file name's
// extension tells the API which container format to expect.
// The result is the SDK's *openai.Transcription.
func (c *Client) Transcription(ctx context.Context, audio *os.File) (any, error) {
	if audio == nil {
		return nil, fmt.Errorf("transcription: no audio file")
	}

	resp, err := c.sdk.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  audio,
		Model: openai.AudioModel(c.transcriptionModel),
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("transcription received", "text_length", len(resp.Text))
	return resp, nil
}

// Close is a no-op for the OpenAI client.
func (c *Client) Close() error { return nil }
