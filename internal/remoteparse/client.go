// Package remoteparse calls the external document parsing service used for
// statement formats the local parser does not handle, primarily PDF exports.
// The service either returns parsed transactions directly, or reports that
// the document is image-based and needs OCR confirmation first.
package remoteparse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"statement-import-service/internal/models"
	"statement-import-service/pkg/errors"
	"statement-import-service/pkg/logger"
)

const defaultTimeout = 60 * time.Second

// Response is the parsing service's reply. Exactly one of Transactions or
// Preview is populated on success; NeedsOCR marks documents that must go
// through OCR confirmation before they yield transactions.
type Response struct {
	Success      bool                      `json:"success"`
	Message      string                    `json:"message,omitempty"`
	NeedsOCR     bool                      `json:"needs_ocr,omitempty"`
	Transactions []*models.Transaction     `json:"transactions,omitempty"`
	Metadata     *models.StatementMetadata `json:"metadata,omitempty"`
	Preview      json.RawMessage           `json:"preview,omitempty"`
}

// Client talks to one parsing service endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient builds a client for the given base URL. A zero timeout gets the
// 60 second default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithComponent("remoteparse"),
	}
}

// ParseDocument uploads a statement document and returns the service's
// parse result. A needs-OCR reply is surfaced as a CodeNeedsOCR error with
// the reply attached, so callers can forward the OCR preview to the user.
func (c *Client) ParseDocument(ctx context.Context, filename string, content io.Reader, accountID string) (*Response, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "build multipart request", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "copy document content", err)
	}
	if err := writer.WriteField("account_id", accountID); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "write account field", err)
	}
	if err := writer.Close(); err != nil {
		return nil, errors.InternalError(errors.CodeUnexpectedError, "finalize multipart request", err)
	}

	endpoint := c.baseURL + "/parse"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeConnectionFailed, endpoint, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeConnectionFailed, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, errors.NetworkError(errors.CodeServiceUnavailable, endpoint,
			fmt.Errorf("parsing service returned status %d", resp.StatusCode))
	}

	var parsed Response
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NetworkError(errors.CodeConnectionFailed, endpoint,
			fmt.Errorf("decoding parse response: %w", err))
	}

	if parsed.NeedsOCR {
		c.logger.WithField("file", filename).Info("Document needs OCR confirmation")
		return &parsed, errors.NetworkError(errors.CodeNeedsOCR, filename, nil)
	}
	if !parsed.Success {
		return &parsed, errors.ParseError(errors.CodeInvalidFormat, filename, parsed.Message, nil)
	}

	c.logger.WithFields(logger.Fields{
		"file":         filename,
		"transactions": len(parsed.Transactions),
	}).Info("Remote parse completed")
	return &parsed, nil
}
