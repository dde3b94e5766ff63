package upstream

import (
	"encoding/json"

	"github.com/openai/openai-go"
)

// ChatContent returns choices[0].message.content from a completion response.
//
// Structured access is tried first; when it yields nothing the response is
// looked up as a key-value mapping (a decoded map, raw JSON, or the typed
// value's own raw JSON). ErrNoContent is returned when both fail.
func ChatContent(resp any) (string, error) {
	if s := chatContentTyped(resp); s != "" {
		return s, nil
	}
	if s, ok := lookupString(asMapping(resp), "choices", 0, "message", "content"); ok && s != "" {
		return s, nil
	}
	return "", ErrNoContent
}

// TranscriptText returns the text field of a transcription response, or ""
// when neither access pattern finds one. Callers decide whether empty text is
// an error.
func TranscriptText(resp any) string {
	if s := transcriptTextTyped(resp); s != "" {
		return s
	}
	s, _ := lookupString(asMapping(resp), "text")
	return s
}

func chatContentTyped(resp any) string {
	var c *openai.ChatCompletion
	switch r := resp.(type) {
	case *openai.ChatCompletion:
		c = r
	case openai.ChatCompletion:
		c = &r
	}
	if c == nil || len(c.Choices) == 0 {
		return ""
	}
	return c.Choices[0].Message.Content
}

func transcriptTextTyped(resp any) string {
	switch r := resp.(type) {
	case *openai.Transcription:
		if r != nil {
			return r.Text
		}
	case openai.Transcription:
		return r.Text
	}
	return ""
}

type rawJSONer interface {
	RawJSON() string
}

// asMapping converts resp into a generic JSON value, or nil if it has no
// mapping form.
func asMapping(resp any) any {
	var raw []byte
	switch r := resp.(type) {
	case nil:
		return nil
	case map[string]any:
		return r
	case json.RawMessage:
		raw = r
	case []byte:
		raw = r
	case string:
		raw = []byte(r)
	case *openai.ChatCompletion:
		if r == nil {
			return nil
		}
		raw = []byte(r.RawJSON())
	case *openai.Transcription:
		if r == nil {
			return nil
		}
		raw = []byte(r.RawJSON())
	case rawJSONer:
		raw = []byte(r.RawJSON())
	default:
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// lookupString walks v along path, where string elements index objects and
// int elements index arrays.
func lookupString(v any, path ...any) (string, bool) {
	cur := v
	for _, p := range path {
		switch key := p.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			if cur, ok = m[key]; !ok {
				return "", false
			}
		case int:
			arr, ok := cur.([]any)
			if !ok || key < 0 || key >= len(arr) {
				return "", false
			}
			cur = arr[key]
		default:
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}
