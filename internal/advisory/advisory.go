// Package advisory implements the crop advisory gateway: it turns a farmer's
// query into a chat completion and an uploaded voice note into text.
//
// The service holds no per-request state. Both operations make exactly one
// upstream call and never retry.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/smartcrop/cropadvisory/internal/upstream"
)

// Language tags accepted in AdviceRequest.Lang.
const (
	LangHindi   = "hi"
	LangEnglish = "en"
)

var (
	// ErrInvalidRequest wraps every validation failure of an AdviceRequest.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrEmptyTranscription is returned when the transcription call succeeded
	// but produced no text.
	ErrEmptyTranscription = errors.New("transcription returned empty result")
)

// Upstream is the hosted model API the gateway forwards to. Results are the
// client library's native response values; see upstream.ChatContent and
// upstream.TranscriptText.
type Upstream interface {
	ChatCompletion(ctx context.Context, req upstream.ChatRequest) (any, error)
	Transcription(ctx context.Context, audio *os.File) (any, error)
}

// Options tunes the completion call and where uploads are staged.
type Options struct {
	MaxTokens   int
	Temperature float64
	TempDir     string // empty uses os.TempDir
}

// DefaultOptions returns the production completion parameters.
func DefaultOptions() Options {
	return Options{MaxTokens: 450, Temperature: 0.2}
}

// Service is the advisory gateway.
type Service struct {
	upstream Upstream
	opts     Options
}

// NewService creates a Service that forwards to up.
func NewService(up Upstream, opts Options) *Service {
	return &Service{upstream: up, opts: opts}
}

// AdviceRequest is a farmer's free-text query with optional context.
type AdviceRequest struct {
	Text string   `json:"text" example:"Leaves of my wheat are turning yellow"`
	Lang string   `json:"lang,omitempty" enums:"hi,en" default:"hi"`
	Lat  *float64 `json:"lat,omitempty" example:"26.85"`
	Lon  *float64 `json:"lon,omitempty" example:"80.95"`
	Crop *string  `json:"crop,omitempty" example:"wheat"`
}

// Normalize applies the default language and validates the request.
// Text is left as sent.
func (r *AdviceRequest) Normalize() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: text is required", ErrInvalidRequest)
	}

	r.Lang = strings.ToLower(strings.TrimSpace(r.Lang))
	if r.Lang == "" {
		r.Lang = LangHindi
	}
	if r.Lang != LangHindi && r.Lang != LangEnglish {
		return fmt.Errorf("%w: lang must be %q or %q, got %q", ErrInvalidRequest, LangHindi, LangEnglish, r.Lang)
	}
	return nil
}

// AdviceResponse carries the model's advisory text.
type AdviceResponse struct {
	Advice string `json:"advice"`
}

// TranscriptionResponse carries the transcribed text of an upload.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// Advise sends the query to the completion service and returns its reply.
// Upstream and extraction errors are returned unwrapped so their message can
// be shown to the caller.
func (s *Service) Advise(ctx context.Context, req AdviceRequest) (*AdviceResponse, error) {
	if err := req.Normalize(); err != nil {
		return nil, err
	}

	resp, err := s.upstream.ChatCompletion(ctx, upstream.ChatRequest{
		System:      SystemPrompt(req.Lang),
		User:        UserPrompt(req),
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return nil, err
	}

	advice, err := upstream.ChatContent(resp)
	if err != nil {
		return nil, err
	}

	slog.Debug("advice generated", "lang", req.Lang, "advice_length", len(advice))
	return &AdviceResponse{Advice: advice}, nil
}
