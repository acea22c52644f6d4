// Package clients exposes the client registry over HTTP.
package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/phuslu/log"

	"finanzaviz/pkg/core/registry"
	"finanzaviz/pkg/models"
)

// Handler serves client registration and listing.
type Handler struct {
	store registry.ClientStore
}

// NewHandler creates a new clients handler.
func NewHandler(store registry.ClientStore) *Handler {
	return &Handler{store: store}
}

type registerRequest struct {
	RazaoSocial  string `json:"razaoSocial"`
	NomeFantasia string `json:"nomeFantasia"`
	CNPJ         string `json:"cnpj"`
	CNAE         string `json:"cnae"`
}

// HandleRegister registers a new client entity.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.RazaoSocial) == "" || strings.TrimSpace(req.NomeFantasia) == "" {
		writeError(w, http.StatusBadRequest, "razaoSocial and nomeFantasia are required")
		return
	}

	client, err := h.store.Register(r.Context(), models.Client{
		RazaoSocial:  req.RazaoSocial,
		NomeFantasia: req.NomeFantasia,
		CNPJ:         req.CNPJ,
		CNAE:         req.CNAE,
	})
	if err != nil {
		log.Error().Err(err).Msg("client registration failed")
		writeError(w, http.StatusInternalServerError, "could not register client")
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

// HandleList returns every registered client.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	clients, err := h.store.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("client listing failed")
		writeError(w, http.StatusInternalServerError, "could not list clients")
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// HandleGet returns one client by id.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request, id string) {
	client, err := h.store.Get(r.Context(), id)
	if errors.Is(err, registry.ErrNotFound) {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("client", id).Msg("client lookup failed")
		writeError(w, http.StatusInternalServerError, "could not load client")
		return
	}
	writeJSON(w, http.StatusOK, client)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
