// Package http implements the HTTP transport for the crop advisory gateway.
//
// It exposes two JSON endpoints under /api for the web frontend, the Swagger
// UI for the generated OpenAPI document, and wraps everything in CORS,
// request-ID and access-log middleware.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/smartcrop/cropadvisory/docs" // registers the OpenAPI document
	"github.com/smartcrop/cropadvisory/internal/advisory"
)

// Gateway is the advisory service as seen by the transport.
type Gateway interface {
	Advise(ctx context.Context, req advisory.AdviceRequest) (*advisory.AdviceResponse, error)
	Transcribe(ctx context.Context, filename string, audio io.Reader) (*advisory.TranscriptionResponse, error)
}

// Options configures the HTTP transport.
type Options struct {
	Port           int
	MaxUploadBytes int64
	// AllowedOrigins lists CORS origins. Empty allows every origin.
	AllowedOrigins []string
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

const uploadField = "file"

// Transport serves the advisory API over HTTP.
type Transport struct {
	opts    Options
	gateway Gateway
	server  *http.Server
}

// New creates a new HTTP transport in front of gateway.
func New(gateway Gateway, opts Options) *Transport {
	t := &Transport{opts: opts, gateway: gateway}
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return t
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the fully wrapped API handler.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/advice", t.handleAdvice)
	mux.HandleFunc("POST /api/transcribe", t.handleTranscribe)

	// Swagger UI for the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var h http.Handler = mux
	h = accessLog(h)
	h = requestID(h)
	h = newCORS(t.opts.AllowedOrigins).Handler(h)
	return h
}

// Listen starts the HTTP server. It blocks until the context is cancelled
// or Close is called.
func (t *Transport) Listen(ctx context.Context) error {
	slog.Info("http transport listening", "port", t.opts.Port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.server.Shutdown(ctx)
}

// handleAdvice processes a POST /api/advice request.
//
// @Summary     Get crop advice
// @Description Sends the farmer's query, with optional location and crop, to the language model
// @Description and returns short step-by-step advice in Hindi or English.
// @Tags        advisory
// @Accept      json
// @Produce     json
// @Param       request  body      advisory.AdviceRequest   true  "Farmer query"
// @Success     200      {object}  advisory.AdviceResponse  "Advice text"
// @Failure     422      {object}  ErrorResponse            "Invalid request body"
// @Failure     500      {object}  ErrorResponse            "Upstream model error"
// @Router      /api/advice [post]
func (t *Transport) handleAdvice(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())

	var req advisory.AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid json: "+err.Error())
		return
	}

	resp, err := t.gateway.Advise(r.Context(), req)
	if err != nil {
		if errors.Is(err, advisory.ErrInvalidRequest) {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.Error("advice failed", "error", err)
		writeDetail(w, http.StatusInternalServerError, "OpenAI error: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTranscribe processes a POST /api/transcribe request.
//
// @Summary     Transcribe a voice note
// @Description Accepts an audio upload in the "file" form field and returns its transcription.
// @Description The file extension is forwarded to the speech-to-text service; files without one are sent as .wav.
// @Tags        advisory
// @Accept      multipart/form-data
// @Produce     json
// @Param       file  formData  file                            true  "Audio recording"
// @Success     200   {object}  advisory.TranscriptionResponse  "Transcribed text"
// @Failure     413   {object}  ErrorResponse                   "Upload too large"
// @Failure     422   {object}  ErrorResponse                   "Missing or malformed upload"
// @Failure     500   {object}  ErrorResponse                   "Transcription failed or returned empty text"
// @Router      /api/transcribe [post]
func (t *Transport) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context())

	if t.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, t.opts.MaxUploadBytes)
	}

	part, err := findFilePart(r)
	if err != nil {
		if isTooLarge(err) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	defer part.Close()

	resp, err := t.gateway.Transcribe(r.Context(), part.FileName(), part)
	if err != nil {
		switch {
		case isTooLarge(err):
			writeDetail(w, http.StatusRequestEntityTooLarge, "upload too large")
		case errors.Is(err, advisory.ErrEmptyTranscription):
			logger.Warn("transcription returned no text")
			writeDetail(w, http.StatusInternalServerError, "Transcription returned empty result")
		default:
			logger.Error("transcription failed", "error", err)
			writeDetail(w, http.StatusInternalServerError, "Transcription error: "+err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// findFilePart streams the multipart body up to the upload field.
func findFilePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("expected multipart/form-data upload: %w", err)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, fmt.Errorf("form field %q is required", uploadField)
		}
		if err != nil {
			return nil, fmt.Errorf("reading upload: %w", err)
		}
		if part.FormName() == uploadField {
			return part, nil
		}
		part.Close()
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}
