package server

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"statement-import-service/internal/dedup"
	"statement-import-service/internal/models"
	"statement-import-service/internal/parsers"
	"statement-import-service/internal/store"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

// maxUploadBytes caps statement uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// uploadResponse is the envelope returned by the upload endpoint.
type uploadResponse struct {
	Success    bool                      `json:"success"`
	BatchID    string                    `json:"batch_id"`
	Parsed     int                       `json:"parsed"`
	Inserted   int                       `json:"inserted"`
	Duplicates int                       `json:"duplicates"`
	Skipped    int                       `json:"skipped"`
	Metadata   *models.StatementMetadata `json:"metadata,omitempty"`
	AutoMatch  *store.MatchOutcome       `json:"automatch,omitempty"`
	Warning    string                    `json:"warning,omitempty"`
}

// handleUpload ingests one statement file for an account: parse, filter
// duplicates against stored lines, bulk-insert under a fresh batch id, upsert
// statement metadata, then run auto matching. An auto-match failure does not
// fail the upload; the inserted lines are kept and the error is surfaced as a
// warning.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "expected multipart form: "+err.Error())
		return
	}

	accountID := strings.TrimSpace(r.FormValue("account_id"))
	if accountID == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	strategy, err := dedup.ParseStrategy(r.FormValue("on_duplicates"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strategy == dedup.StrategyAsk {
		respondError(w, http.StatusBadRequest, "duplicate strategy 'ask' is interactive; use skip or include over HTTP")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	year := 0
	if v := strings.TrimSpace(r.FormValue("year")); v != "" {
		year, err = strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "year must be a number")
			return
		}
	}
	currency := strings.TrimSpace(r.FormValue("currency"))
	if currency == "" {
		currency = "IDR"
	}

	log := s.logger.WithFields(logger.Fields{
		"account_id": accountID,
		"file":       header.Filename,
	})

	var (
		txns     []*models.Transaction
		metadata *models.StatementMetadata
		skipped  int
	)

	if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		if s.remote == nil {
			respondError(w, http.StatusBadRequest, "PDF statements require the remote parsing service, which is not configured")
			return
		}
		remote, err := s.remote.ParseDocument(ctx, header.Filename, file, accountID)
		if err != nil {
			if errors.HasCode(err, errors.CodeNeedsOCR) {
				respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
					"success":   false,
					"needs_ocr": true,
					"error":     err.Error(),
					"preview":   remote.Preview,
				})
				return
			}
			respondError(w, http.StatusBadGateway, err.Error())
			return
		}
		txns, metadata = remote.Transactions, remote.Metadata
	} else {
		parser, err := parsers.NewStatementParser(&parsers.Config{
			SourceName:    header.Filename,
			StatementYear: year,
			Currency:      currency,
		})
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		result, err := parser.ParseReader(file, header.Filename)
		if err != nil {
			respondError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		txns, metadata, skipped = result.Transactions, result.Metadata, result.Stats.SkippedRows
	}

	existing, err := s.store.FetchExisting(ctx, accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	kept, dupes := dedup.NewFilter(strategy, nil).Apply(txns, existing)

	batchID := uuid.New().String()
	inserted, err := s.store.InsertTransactions(ctx, accountID, batchID, "api", kept)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.store.UpsertMetadata(ctx, accountID, batchID, metadataOrEmpty(metadata)); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := &uploadResponse{
		Success:    true,
		BatchID:    batchID,
		Parsed:     len(txns),
		Inserted:   int(inserted),
		Duplicates: len(dupes.Duplicates),
		Skipped:    skipped,
		Metadata:   metadata,
	}

	if inserted > 0 {
		outcome, err := s.store.AutoMatch(ctx, accountID, batchID)
		if err != nil {
			log.WithError(err).Warn("Auto match failed after insert")
			resp.Warning = "transactions stored but auto-match failed; re-run it via POST /statements/automatch"
		} else {
			resp.AutoMatch = outcome
		}
	}

	log.WithFields(logger.Fields{
		"batch_id":   batchID,
		"parsed":     resp.Parsed,
		"inserted":   resp.Inserted,
		"duplicates": resp.Duplicates,
	}).Info("Statement uploaded")

	respondJSON(w, http.StatusOK, resp)
}

// handleList returns the uploaded statements for ?account=.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(r.URL.Query().Get("account"))
	if accountID == "" {
		respondError(w, http.StatusBadRequest, "account query parameter is required")
		return
	}

	summaries, err := s.store.ListStatements(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []*store.StatementSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"statements": summaries,
	})
}

// handleAutoMatch re-runs matching for one account, optionally scoped to a
// single upload batch.
func (s *Server) handleAutoMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"account_id"`
		BatchID   string `json:"batch_id"`
	}
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.AccountID) == "" {
		respondError(w, http.StatusBadRequest, "account_id is required")
		return
	}

	outcome, err := s.store.AutoMatch(r.Context(), req.AccountID, req.BatchID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"automatch": outcome,
	})
}

func metadataOrEmpty(md *models.StatementMetadata) *models.StatementMetadata {
	if md == nil {
		return &models.StatementMetadata{}
	}
	return md
}
