package advisory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/smartcrop/cropadvisory/internal/upstream"
)

const defaultAudioSuffix = ".wav"

// AudioSuffix returns the extension of filename, or ".wav" when it has none.
// A leading dot on the base name (".ogg") does not count as an extension.
func AudioSuffix(filename string) string {
	base := strings.TrimLeft(filepath.Base(filename), ".")
	if ext := filepath.Ext(base); ext != "" {
		return ext
	}
	return defaultAudioSuffix
}

// Transcribe stages audio in a temporary file named after filename's
// extension and sends it to the transcription service.
//
// The temporary file is removed before Transcribe returns, whatever the
// outcome. ErrEmptyTranscription is returned when the service answers with
// no text.
func (s *Service) Transcribe(ctx context.Context, filename string, audio io.Reader) (*TranscriptionResponse, error) {
	tmp, err := os.CreateTemp(s.opts.TempDir, "transcribe-*"+AudioSuffix(filename))
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer removeTemp(tmp)

	n, err := io.Copy(tmp, audio)
	if err != nil {
		return nil, fmt.Errorf("writing temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding temp file: %w", err)
	}
	slog.Debug("audio staged", "path", tmp.Name(), "bytes", n)

	resp, err := s.upstream.Transcription(ctx, tmp)
	if err != nil {
		return nil, err
	}

	text := upstream.TranscriptText(resp)
	if text == "" {
		return nil, ErrEmptyTranscription
	}
	return &TranscriptionResponse{Text: text}, nil
}

// removeTemp closes and deletes f. Failures are logged and otherwise ignored.
func removeTemp(f *os.File) {
	_ = f.Close()
	if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		slog.Debug("temp file cleanup failed", "path", f.Name(), "error", err)
	}
}
