package http

import (
	"net/http"
	"strings"

	"monetra/internal/core"
)

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.dashboards.Balance(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]core.Money{"available": balance})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	summary, err := s.dashboards.Upcoming(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	today := core.Today()
	year, month := today.Year(), today.Month()

	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		var err error
		year, month, err = core.ParseMonth(v)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	}

	report, err := s.dashboards.Report(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
