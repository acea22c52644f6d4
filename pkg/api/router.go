// Package api wires the HTTP surface together.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	analysisapi "finanzaviz/pkg/api/analysis"
	"finanzaviz/pkg/api/chatapi"
	clientsapi "finanzaviz/pkg/api/clients"
	"finanzaviz/pkg/core/pipeline"
	"finanzaviz/pkg/core/registry"
	"finanzaviz/pkg/core/store"
)

// NewRouter assembles all routes on top of the shared dependencies.
func NewRouter(orchestrator *pipeline.Orchestrator, repo store.AnalysisRepository, clients registry.ClientStore) http.Handler {
	r := mux.NewRouter()
	apiRouter := r.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	clientsHandler := clientsapi.NewHandler(clients)
	apiRouter.HandleFunc("/clients", clientsHandler.HandleRegister).Methods(http.MethodPost)
	apiRouter.HandleFunc("/clients", clientsHandler.HandleList).Methods(http.MethodGet)
	apiRouter.HandleFunc("/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		clientsHandler.HandleGet(w, r, mux.Vars(r)["id"])
	}).Methods(http.MethodGet)

	analysisHandler := analysisapi.NewHandler(orchestrator, repo, clients)
	apiRouter.HandleFunc("/analysis/run", analysisHandler.HandleRun).Methods(http.MethodPost)
	apiRouter.HandleFunc("/analysis/{clientID}", func(w http.ResponseWriter, r *http.Request) {
		analysisHandler.HandleGet(w, r, mux.Vars(r)["clientID"])
	}).Methods(http.MethodGet)
	apiRouter.HandleFunc("/analysis/{clientID}/notes/{section}", func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		analysisHandler.HandleSaveNote(w, r, vars["clientID"], vars["section"])
	}).Methods(http.MethodPut)

	chatHandler := chatapi.NewHandler(orchestrator, repo)
	apiRouter.HandleFunc("/chat/open", chatHandler.HandleOpen).Methods(http.MethodPost)
	apiRouter.HandleFunc("/chat/{sessionID}/ask", func(w http.ResponseWriter, r *http.Request) {
		chatHandler.HandleAsk(w, r, mux.Vars(r)["sessionID"])
	}).Methods(http.MethodPost)
	apiRouter.HandleFunc("/chat/{sessionID}/transcript", func(w http.ResponseWriter, r *http.Request) {
		chatHandler.HandleTranscript(w, r, mux.Vars(r)["sessionID"])
	}).Methods(http.MethodGet)
	apiRouter.HandleFunc("/chat/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
		chatHandler.HandleClose(w, r, mux.Vars(r)["sessionID"])
	}).Methods(http.MethodDelete)

	return r
}
