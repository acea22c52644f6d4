// Package llm abstracts the generative document-understanding service. The
// pipeline depends on these interfaces only; the Gemini implementation lives
// alongside and fakes stand in during tests.
package llm

import (
	"context"

	"google.golang.org/genai"

	"finanzaviz/pkg/core/normalize"
)

// StructuredRequest is one schema-constrained extraction exchange. Parts are
// sent in the given order; Schema forces the service to return conformant
// JSON instead of free text.
type StructuredRequest struct {
	Model       string
	Parts       []normalize.RequestPart
	Schema      *genai.Schema
	Temperature float32
}

// ChatRequest opens one stateful follow-up session. SystemInstruction is the
// grounding context; ThinkingBudget is the deep-reasoning effort passed
// through to the service.
type ChatRequest struct {
	Model             string
	SystemInstruction string
	ThinkingBudget    int32
}

// ChatSession is a single ordered conversation. Send issues one text-in /
// text-out exchange; the provider keeps the history.
type ChatSession interface {
	Send(ctx context.Context, text string) (string, error)
}

// Provider is the boundary to the external generative service.
type Provider interface {
	GenerateStructured(ctx context.Context, req StructuredRequest) (string, error)
	StartChat(ctx context.Context, req ChatRequest) (ChatSession, error)
}
