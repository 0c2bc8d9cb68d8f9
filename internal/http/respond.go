package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"monetra/internal/core"
	"monetra/internal/receipts"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= 500 {
		slog.ErrorContext(r.Context(), "Request failed",
			"status", status, "path", r.URL.Path, "error", msg)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound), errors.Is(err, receipts.ErrReceiptNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyLabel),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, core.ErrInvalidMonth):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON reads a request body with numbers kept as json.Number so
// amount coercion sees the raw token.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// transactionRequest is the wire shape for create and update. Amount is
// left untyped: strings, numbers and garbage all pass through the
// lenient normalizer, which coerces failures to zero.
type transactionRequest struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	Amount    any    `json:"amount"`
	Date      string `json:"date"`
	Category  string `json:"category"`
	Recurring bool   `json:"recurring"`
	ReceiptID string `json:"receipt_id"`
}

func (req transactionRequest) toDomain() (core.Transaction, error) {
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Type:      core.TransactionType(strings.TrimSpace(req.Type)),
		Label:     strings.TrimSpace(req.Label),
		Amount:    core.NormalizeAmount(req.Amount),
		Date:      date,
		Category:  strings.TrimSpace(req.Category),
		Recurring: req.Recurring,
		ReceiptID: strings.TrimSpace(req.ReceiptID),
	}, nil
}
