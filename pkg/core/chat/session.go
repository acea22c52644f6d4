// Package chat seeds and runs the follow-up Q&A session grounded in one
// finalized analysis snapshot. A session never re-grounds itself: the answers
// reflect the data as of session creation, and callers rebuild the session
// when they want later edits reflected.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"finanzaviz/pkg/core/llm"
	"finanzaviz/pkg/core/prompt"
	"finanzaviz/pkg/core/utils"
	"finanzaviz/pkg/models"
)

// FailureNotice is appended to the visible transcript in place of a model
// reply when an exchange fails, so the user's question is never discarded.
const FailureNotice = "Houve um erro na comunicação com a IA. Tente novamente."

// RequestError reports a failed follow-up exchange.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("chat request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// personaVars parameterizes the grounding instruction template.
type personaVars struct {
	OfficeName   string
	AnalysisJSON string
}

// BuildGroundingInstruction serializes the analysis snapshot and embeds it
// verbatim in the persona directive. The snapshot is taken by value at call
// time; later entity mutations do not reach an already-open session.
func BuildGroundingInstruction(analysis models.FinancialAnalysis, officeName string) (string, error) {
	snapshot, err := json.Marshal(analysis)
	if err != nil {
		return "", fmt.Errorf("serialize analysis snapshot: %w", err)
	}
	return prompt.Get().Render(prompt.ChatPersonaID, personaVars{
		OfficeName:   officeName,
		AnalysisJSON: string(snapshot),
	})
}

// Options configures session creation.
type Options struct {
	Model          string
	OfficeName     string
	ThinkingBudget int32
}

// Session is one grounded conversation bound to exactly one analysis
// snapshot. The transcript is append-only. sendMu serializes exchanges so
// turns stay paired; mu guards only the transcript and is never held across
// the external call, so readers stay responsive during a slow exchange.
type Session struct {
	ID         string
	AnalysisID string

	sendMu     sync.Mutex
	mu         sync.Mutex
	remote     llm.ChatSession
	transcript []models.ChatMessage
}

// Open creates a session whose grounding instruction embeds the full
// serialized analysis.
func Open(ctx context.Context, provider llm.Provider, analysis models.FinancialAnalysis, opts Options) (*Session, error) {
	instruction, err := BuildGroundingInstruction(analysis, opts.OfficeName)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	remote, err := provider.StartChat(ctx, llm.ChatRequest{
		Model:             opts.Model,
		SystemInstruction: instruction,
		ThinkingBudget:    opts.ThinkingBudget,
	})
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	log.Info().Str("analysis", analysis.ID).Str("model", opts.Model).Msg("follow-up session opened")
	return &Session{
		ID:         uuid.NewString(),
		AnalysisID: analysis.ID,
		remote:     remote,
	}, nil
}

// Ask runs one text-in/text-out exchange. The user turn is always appended;
// on failure a fixed notice takes the model turn's place and the error is
// returned as *RequestError.
func (s *Session) Ask(ctx context.Context, text string) (string, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	s.appendTurn("user", text)

	reply, err := s.remote.Send(ctx, text)
	if err != nil {
		s.appendTurn("model", FailureNotice)
		return "", &RequestError{Err: err}
	}

	reply = utils.CleanMarkdown(reply)
	s.appendTurn("model", reply)
	return reply, nil
}

func (s *Session) appendTurn(role, text string) {
	s.mu.Lock()
	s.transcript = append(s.transcript, models.ChatMessage{Role: role, Text: text})
	s.mu.Unlock()
}

// Transcript returns a copy of the conversation so far, in order.
func (s *Session) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}
