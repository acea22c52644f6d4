// Package analysis exposes the extraction pipeline and the derived dashboard
// projections over HTTP.
package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/phuslu/log"

	"finanzaviz/pkg/core/derive"
	"finanzaviz/pkg/core/extraction"
	"finanzaviz/pkg/core/normalize"
	"finanzaviz/pkg/core/pipeline"
	"finanzaviz/pkg/core/registry"
	"finanzaviz/pkg/core/store"
	"finanzaviz/pkg/models"
)

// maxUploadBytes bounds one multipart analysis request.
const maxUploadBytes = 64 << 20

// Handler drives analysis runs and serves persisted results.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	repo         store.AnalysisRepository
	clients      registry.ClientStore
}

// NewHandler creates a new analysis handler.
func NewHandler(orchestrator *pipeline.Orchestrator, repo store.AnalysisRepository, clients registry.ClientStore) *Handler {
	return &Handler{orchestrator: orchestrator, repo: repo, clients: clients}
}

// dashboardResponse bundles the persisted entity with its read-time derived
// projections, so consumers never recompute fallbacks themselves.
type dashboardResponse struct {
	Analysis    *models.FinancialAnalysis `json:"analysis"`
	Anatomy     []derive.AnatomyStep      `json:"anatomy"`
	Radar       []derive.RadarScore       `json:"radar"`
	Composition []models.CompositionEntry `json:"composition"`
}

// HandleRun accepts a multipart form with client_id plus the "dre" and
// "balanco" file groups and executes one extraction run.
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	clientID := strings.TrimSpace(r.FormValue("client_id"))
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required")
		return
	}
	client, err := h.clients.Get(r.Context(), clientID)
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("client", clientID).Msg("client lookup failed")
		writeError(w, http.StatusInternalServerError, "could not load client")
		return
	}

	income, err := readUploads(r.MultipartForm.File["dre"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}
	balance, err := readUploads(r.MultipartForm.File["balanco"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded files")
		return
	}

	result, err := h.orchestrator.RunAnalysis(r.Context(), income, balance, client)
	if err != nil {
		h.writeRunError(w, client.ID, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Analysis:    result,
		Anatomy:     derive.Anatomy(result),
		Radar:       derive.Radar(result.KPIs),
		Composition: derive.Composition(result),
	})
}

// HandleGet serves the persisted analysis for a client plus its derived
// projections, recomputed on every read.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, clientID string) {
	analysis, err := h.repo.Load(r.Context(), clientID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no analysis for this client")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("client", clientID).Msg("analysis load failed")
		writeError(w, http.StatusInternalServerError, "could not load analysis")
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		Analysis:    analysis,
		Anatomy:     derive.Anatomy(analysis),
		Radar:       derive.Radar(analysis.KPIs),
		Composition: derive.Composition(analysis),
	})
}

type noteRequest struct {
	Note string `json:"note"`
}

// HandleSaveNote stores one accountant note on a dashboard section of the
// persisted analysis. Notes do not re-ground already-open chat sessions.
func (h *Handler) HandleSaveNote(w http.ResponseWriter, r *http.Request, clientID, section string) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	analysis, err := h.repo.Load(r.Context(), clientID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no analysis for this client")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("client", clientID).Msg("analysis load failed")
		writeError(w, http.StatusInternalServerError, "could not load analysis")
		return
	}

	if analysis.ChartNotes == nil {
		analysis.ChartNotes = make(map[string]string)
	}
	analysis.ChartNotes[section] = req.Note

	if err := h.repo.Save(r.Context(), analysis); err != nil {
		log.Error().Err(err).Str("client", clientID).Msg("note save failed")
		writeError(w, http.StatusInternalServerError, "could not save note")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"section": section, "note": req.Note})
}

// writeRunError maps the pipeline error taxonomy onto HTTP statuses. A failed
// extraction leaves previous dashboard state untouched; the caller gets a
// single summarized notice.
func (h *Handler) writeRunError(w http.ResponseWriter, clientID string, err error) {
	var unreadable *normalize.UnreadableError
	var reqErr *extraction.RequestError
	var malformed *extraction.MalformedResultError

	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "no files to analyze")
	case errors.Is(err, pipeline.ErrAnalysisPending):
		writeError(w, http.StatusConflict, "an analysis is already running for this client")
	case errors.As(err, &unreadable):
		writeError(w, http.StatusUnprocessableEntity, unreadable.Error())
	case errors.As(err, &reqErr), errors.As(err, &malformed):
		log.Error().Err(err).Str("client", clientID).Msg("analysis run failed")
		writeError(w, http.StatusBadGateway, "analysis failed, check the quality of the uploaded files")
	default:
		log.Error().Err(err).Str("client", clientID).Msg("analysis run failed")
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

// readUploads drains a multipart file group into ephemeral uploads,
// preserving form order.
func readUploads(headers []*multipart.FileHeader) ([]normalize.UploadedFile, error) {
	files := make([]normalize.UploadedFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		files = append(files, normalize.NewUploadedFile(header.Filename, header.Header.Get("Content-Type"), data))
	}
	return files, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
