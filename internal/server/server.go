// Package server exposes the statement importer over HTTP: statement upload,
// per-account statement listing, and on-demand auto matching.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"statement-import-service/internal/models"
	"statement-import-service/internal/remoteparse"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/logger"
)

// StatementStore is the persistence surface the handlers need.
type StatementStore interface {
	FetchExisting(ctx context.Context, accountID string) ([]*models.Transaction, error)
	InsertTransactions(ctx context.Context, accountID, batchID, createdBy string, txns []*models.Transaction) (int64, error)
	UpsertMetadata(ctx context.Context, accountID, batchID string, md *models.StatementMetadata) error
	AutoMatch(ctx context.Context, accountID, batchID string) (*store.MatchOutcome, error)
	ListStatements(ctx context.Context, accountID string) ([]*store.StatementSummary, error)
}

// DocumentParser is the remote parsing surface used for PDF statements.
type DocumentParser interface {
	ParseDocument(ctx context.Context, filename string, content io.Reader, accountID string) (*remoteparse.Response, error)
}

// Server holds the handler dependencies.
type Server struct {
	store  StatementStore
	remote DocumentParser
	logger logger.Logger
}

// New builds a server. remote may be nil when no parsing service is
// configured; PDF uploads are then rejected.
func New(st StatementStore, remote DocumentParser) *Server {
	return &Server{
		store:  st,
		remote: remote,
		logger: logger.WithComponent("server"),
	}
}

// Router wires the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/statements/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/statements", s.handleList).Methods(http.MethodGet)
	r.HandleFunc("/statements/automatch", s.handleAutoMatch).Methods(http.MethodPost)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "status": "ok"})
}

func decodeJSONBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
