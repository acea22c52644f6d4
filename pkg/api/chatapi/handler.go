// Package chatapi exposes snapshot-bound follow-up sessions over HTTP.
package chatapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/phuslu/log"

	"finanzaviz/pkg/core/chat"
	"finanzaviz/pkg/core/pipeline"
	"finanzaviz/pkg/core/store"
	"finanzaviz/pkg/core/utils"
	"finanzaviz/pkg/models"
)

// Handler keeps open sessions in memory, keyed by session id. Sessions are
// bound to the analysis snapshot that existed when they were opened; editing
// the analysis afterwards requires opening a new session.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	repo         store.AnalysisRepository

	mu       sync.RWMutex
	sessions map[string]*chat.Session
}

// NewHandler creates a new chat handler.
func NewHandler(orchestrator *pipeline.Orchestrator, repo store.AnalysisRepository) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		repo:         repo,
		sessions:     make(map[string]*chat.Session),
	}
}

type openRequest struct {
	ClientID string `json:"client_id"`
}

type openResponse struct {
	SessionID  string `json:"session_id"`
	AnalysisID string `json:"analysis_id"`
}

// HandleOpen opens one session grounded in the client's persisted analysis.
func (h *Handler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.ClientID) == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}

	analysis, err := h.repo.Load(r.Context(), req.ClientID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no analysis for this client")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("client", req.ClientID).Msg("analysis load failed")
		writeError(w, http.StatusInternalServerError, "could not load analysis")
		return
	}

	session, err := h.orchestrator.OpenFollowupSession(r.Context(), *analysis)
	if err != nil {
		log.Error().Err(err).Str("client", req.ClientID).Msg("session open failed")
		writeError(w, http.StatusBadGateway, "could not open follow-up session")
		return
	}

	h.mu.Lock()
	h.sessions[session.ID] = session
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, openResponse{SessionID: session.ID, AnalysisID: session.AnalysisID})
}

type askRequest struct {
	Message string `json:"message"`
}

type askResponse struct {
	Reply string `json:"reply"`
	HTML  string `json:"html,omitempty"`
}

// HandleAsk runs one follow-up exchange on an open session. A failed turn
// keeps the user's question in the transcript with a visible failure notice.
func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.mu.RLock()
	session, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := session.Ask(r.Context(), req.Message)
	if err != nil {
		log.Error().Err(err).Str("session", sessionID).Msg("chat turn failed")
		writeError(w, http.StatusBadGateway, chat.FailureNotice)
		return
	}

	html, err := utils.RenderMarkdown(reply)
	if err != nil {
		// The markdown reply is still useful without the HTML projection.
		log.Warn().Err(err).Str("session", sessionID).Msg("markdown rendering failed")
		html = ""
	}
	writeJSON(w, http.StatusOK, askResponse{Reply: reply, HTML: html})
}

// HandleClose discards an open session. Sessions are snapshot-bound and
// cheap to reopen, so the dashboard closes them on navigation instead of
// letting the table grow for the life of the process.
func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.mu.Lock()
	_, ok := h.sessions[sessionID]
	delete(h.sessions, sessionID)
	h.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleTranscript returns the ordered conversation so far.
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request, sessionID string) {
	h.mu.RLock()
	session, ok := h.sessions[sessionID]
	h.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Messages []models.ChatMessage `json:"messages"`
	}{Messages: session.Transcript()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
