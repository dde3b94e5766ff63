// Package upstream defines the request shapes sent to the hosted language-model
// API and normalizes the responses it returns.
//
// Client libraries differ in how they hand results back: the OpenAI SDK returns
// typed structs, test doubles and thin HTTP wrappers tend to return decoded
// JSON maps. The extraction helpers here accept either so handlers never have
// to care.
package upstream

import "errors"

// ErrNoContent is returned when a chat completion carries no message content
// under either access pattern.
var ErrNoContent = errors.New("no content in completion response")

// ChatRequest is a single system+user completion call.
type ChatRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}
