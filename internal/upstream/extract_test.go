package upstream

import (
	"encoding/json"
	"testing"

	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completionJSON = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "1. Irrigate lightly today."}
	}]
}`

func TestChatContent_Structured(t *testing.T) {
	resp := &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: "Spray neem oil."}},
		},
	}

	got, err := ChatContent(resp)
	require.NoError(t, err)
	assert.Equal(t, "Spray neem oil.", got)

	got, err = ChatContent(*resp)
	require.NoError(t, err)
	assert.Equal(t, "Spray neem oil.", got)
}

func TestChatContent_DecodedStructured(t *testing.T) {
	var resp openai.ChatCompletion
	require.NoError(t, json.Unmarshal([]byte(completionJSON), &resp))

	got, err := ChatContent(&resp)
	require.NoError(t, err)
	assert.Equal(t, "1. Irrigate lightly today.", got)
}

func TestChatContent_Mapping(t *testing.T) {
	resp := map[string]any{
		"choices": []any{
			map[string]any{"message": map[string]any{"content": "Use mulch."}},
		},
	}

	got, err := ChatContent(resp)
	require.NoError(t, err)
	assert.Equal(t, "Use mulch.", got)
}

func TestChatContent_RawJSON(t *testing.T) {
	got, err := ChatContent(json.RawMessage(completionJSON))
	require.NoError(t, err)
	assert.Equal(t, "1. Irrigate lightly today.", got)

	got, err = ChatContent([]byte(completionJSON))
	require.NoError(t, err)
	assert.Equal(t, "1. Irrigate lightly today.", got)
}

func TestChatContent_NoContent(t *testing.T) {
	tests := []struct {
		name string
		resp any
	}{
		{"nil", nil},
		{"empty struct", &openai.ChatCompletion{}},
		{"no choices", map[string]any{"choices": []any{}}},
		{"content not a string", map[string]any{"choices": []any{map[string]any{"message": map[string]any{"content": 42.0}}}}},
		{"message missing", map[string]any{"choices": []any{map[string]any{}}}},
		{"invalid json", []byte("{not json")},
		{"unsupported type", 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ChatContent(tt.resp)
			require.ErrorIs(t, err, ErrNoContent)
		})
	}
}

func TestTranscriptText(t *testing.T) {
	var decoded openai.Transcription
	require.NoError(t, json.Unmarshal([]byte(`{"text":"gehun mein keede"}`), &decoded))

	tests := []struct {
		name string
		resp any
		want string
	}{
		{"structured pointer", &openai.Transcription{Text: "pani kab dena hai"}, "pani kab dena hai"},
		{"structured value", openai.Transcription{Text: "khad"}, "khad"},
		{"decoded structured", &decoded, "gehun mein keede"},
		{"mapping", map[string]any{"text": "beej"}, "beej"},
		{"raw json", []byte(`{"text":"mitti"}`), "mitti"},
		{"mapping without text", map[string]any{"language": "hi"}, ""},
		{"empty text", map[string]any{"text": ""}, ""},
		{"nil", nil, ""},
		{"nil pointer", (*openai.Transcription)(nil), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TranscriptText(tt.resp))
		})
	}
}
