package http

import (
	"log/slog"
	"net/http"
	"strings"

	"monetra/internal/core"
	"monetra/internal/ledger"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := req.toDomain()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": created.ID})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	var filter ledger.Filter

	if month := strings.TrimSpace(r.URL.Query().Get("month")); month != "" {
		year, m, err := core.ParseMonth(month)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		filter.Year, filter.Month = year, m
	}
	switch r.URL.Query().Get("recurring") {
	case "":
	case "true", "1":
		v := true
		filter.Recurring = &v
	case "false", "0":
		v := false
		filter.Recurring = &v
	default:
		writeError(w, r, http.StatusBadRequest, "recurring must be true or false")
		return
	}

	list, err := s.transactions.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": list, "count": len(list)})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.transactions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	t, err := req.toDomain()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	updated, err := s.transactions.Update(r.Context(), r.PathValue("id"), t, futureScope(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id"), futureScope(r)); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Reset(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	if s.receipts != nil {
		if err := s.receipts.Reset(r.Context()); err != nil {
			writeDomainError(w, r, err)
			return
		}
	}
	slog.InfoContext(r.Context(), "All data cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// futureScope reads the ?future flag selecting series-wide mutations.
func futureScope(r *http.Request) bool {
	switch r.URL.Query().Get("future") {
	case "1", "true":
		return true
	}
	return false
}
