// Package llm adapts generative model services to the two capabilities the
// pipeline needs: schema-constrained generation and streamed chat.
package llm

import (
	"context"
	"iter"
)

// StructuredRequest asks for a single JSON payload matching Schema.
type StructuredRequest struct {
	// Prompt is the full instruction text.
	Prompt string
	// Schema is a JSON Schema document (decoded form) the payload must match.
	Schema map[string]any
	// Temperature is the sampling temperature.
	Temperature float32
}

// Turn is one replayed history entry.
type Turn struct {
	// Role is "user" or "model".
	Role string
	Text string
}

// ChatRequest asks for a streamed reply to Message given History.
type ChatRequest struct {
	SystemInstruction string
	History           []Turn
	Message           string
}

// Generator produces structured output.
type Generator interface {
	// GenerateStructured returns the raw payload text, which is empty when
	// the model produced no content.
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)
}

// Streamer produces streamed chat replies.
type Streamer interface {
	// StreamChat opens a stream of text fragments. The sequence is finite and
	// can be ranged over once. An error returned here means the stream could
	// not be established; an error yielded by the sequence ends it.
	StreamChat(ctx context.Context, req ChatRequest) (iter.Seq2[string, error], error)
}

// Client is a model backend providing both capabilities.
type Client interface {
	Generator
	Streamer
	Name() string
	Close() error
}
