// Package pipeline manages the end-to-end analysis flow: normalize uploads,
// issue the schema-constrained extraction call, validate and stamp the
// result, persist it, and open grounded follow-up sessions against finalized
// analyses.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/phuslu/log"

	"finanzaviz/pkg/core/chat"
	"finanzaviz/pkg/core/extraction"
	"finanzaviz/pkg/core/llm"
	"finanzaviz/pkg/core/normalize"
	"finanzaviz/pkg/core/registry"
	"finanzaviz/pkg/core/store"
	"finanzaviz/pkg/models"
)

var (
	// ErrEmptyInput reports an analysis attempt with both file groups empty.
	// No external call is issued.
	ErrEmptyInput = errors.New("no files to analyze")

	// ErrAnalysisPending reports a second extraction attempt while one is
	// already in flight for the same client.
	ErrAnalysisPending = errors.New("analysis already in progress for this client")

	// ErrAbandoned reports an in-flight run whose pending state was reset
	// before completion; its result was discarded, not applied.
	ErrAbandoned = errors.New("analysis run was abandoned")
)

// Config carries the tunables passed through to the external calls.
type Config struct {
	ExtractionModel string
	ChatModel       string
	OfficeName      string
	ThinkingBudget  int32
	Timeout         time.Duration
}

// Orchestrator owns the per-client in-flight guard and wires the extractor,
// the analysis repository and the client registry together.
type Orchestrator struct {
	provider  llm.Provider
	extractor *extraction.Extractor
	repo      store.AnalysisRepository
	clients   registry.ClientStore
	cfg       Config

	mu        sync.Mutex
	pending   map[string]uint64 // client id -> run token
	nextToken uint64
}

// NewOrchestrator creates an orchestrator. repo and clients may be nil in
// contexts that do not persist (the CLI runner, tests).
func NewOrchestrator(provider llm.Provider, repo store.AnalysisRepository, clients registry.ClientStore, cfg Config) *Orchestrator {
	return &Orchestrator{
		provider:  provider,
		extractor: extraction.NewExtractor(provider, cfg.ExtractionModel),
		repo:      repo,
		clients:   clients,
		cfg:       cfg,
		pending:   make(map[string]uint64),
	}
}

// RunAnalysis executes one extraction for the client. At most one run per
// client is in flight: a concurrent second attempt fails with
// ErrAnalysisPending. On any failure previously persisted state is left
// untouched.
func (o *Orchestrator) RunAnalysis(ctx context.Context, income, balance []normalize.UploadedFile, client models.Client) (*models.FinancialAnalysis, error) {
	if len(income) == 0 && len(balance) == 0 {
		return nil, ErrEmptyInput
	}

	token, err := o.acquire(client.ID)
	if err != nil {
		return nil, err
	}

	if o.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Timeout)
		defer cancel()
	}

	raw, err := o.extractor.Extract(ctx, income, balance, client)
	if err != nil {
		o.release(client.ID, token)
		return nil, err
	}

	analysis, err := extraction.ParseResult(raw, client.ID)
	if err != nil {
		o.release(client.ID, token)
		return nil, err
	}

	// Write-back is guarded by the run token: a Reset while the call was in
	// flight means the result must be discarded, not applied to state that
	// has moved on.
	if !o.release(client.ID, token) {
		log.Warn().Str("client", client.ID).Msg("discarding result of abandoned analysis run")
		return nil, ErrAbandoned
	}

	if o.repo != nil {
		if err := o.repo.Save(ctx, analysis); err != nil {
			return nil, err
		}
	}
	if o.clients != nil {
		if err := o.clients.TouchLastAnalysis(ctx, client.ID, analysis.Date); err != nil {
			log.Warn().Err(err).Str("client", client.ID).Msg("failed to update last analysis date")
		}
	}

	log.Info().Str("client", client.ID).Str("analysis", analysis.ID).Int("periods", len(analysis.Dre)).Msg("analysis completed")
	return analysis, nil
}

// OpenFollowupSession opens one conversational session bound to the given
// analysis snapshot. The snapshot is passed by value: later edits to the
// stored entity never reach the session, callers rebuild it instead.
func (o *Orchestrator) OpenFollowupSession(ctx context.Context, analysis models.FinancialAnalysis) (*chat.Session, error) {
	return chat.Open(ctx, o.provider, analysis, chat.Options{
		Model:          o.cfg.ChatModel,
		OfficeName:     o.cfg.OfficeName,
		ThinkingBudget: o.cfg.ThinkingBudget,
	})
}

// Reset clears any pending run for the client. An in-flight extraction may
// still complete, but its result will not be written back.
func (o *Orchestrator) Reset(clientID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, clientID)
}

// acquire registers a run for clientID, rejecting a concurrent one.
func (o *Orchestrator) acquire(clientID string) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, inFlight := o.pending[clientID]; inFlight {
		return 0, ErrAnalysisPending
	}
	o.nextToken++
	o.pending[clientID] = o.nextToken
	return o.nextToken, nil
}

// release clears the pending entry if it still belongs to this run. It
// reports whether the run was still current.
func (o *Orchestrator) release(clientID string, token uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	current, ok := o.pending[clientID]
	if !ok || current != token {
		return false
	}
	delete(o.pending, clientID)
	return true
}
