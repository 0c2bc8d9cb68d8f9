// Package http exposes the ledger as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"

	"monetra/internal/ledger"
	"monetra/internal/middleware/ratelimit"
	"monetra/internal/middleware/security"
	"monetra/internal/middleware/trace"
	"monetra/internal/services"
)

const maxReceiptBytes = 5 << 20 // 5 MiB upload cap

type Server struct {
	http.Server

	transactions *services.TransactionService
	dashboards   *services.DashboardService
	receipts     ledger.ReceiptStore
	scanner      ledger.Scanner

	tracer       *trace.Middleware
	limiter      *ratelimit.Limiter
	shutdownOnce sync.Once
}

// Deps carries the collaborators the server needs. Scanner is optional;
// without it uploads are stored but never scanned.
type Deps struct {
	Transactions *services.TransactionService
	Dashboards   *services.DashboardService
	Receipts     ledger.ReceiptStore
	Scanner      ledger.Scanner
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	s := &Server{
		transactions: deps.Transactions,
		dashboards:   deps.Dashboards,
		receipts:     deps.Receipts,
		scanner:      deps.Scanner,
		tracer:       trace.NewMiddleware(clientIP),
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("GET /dashboard/balance", s.handleBalance)
	mux.HandleFunc("GET /dashboard/upcoming", s.handleUpcoming)
	mux.HandleFunc("GET /dashboard/report", s.handleReport)

	mux.HandleFunc("POST /receipts", s.handleUploadReceipt)
	mux.HandleFunc("GET /receipts/{id}", s.handleDownloadReceipt)
	mux.HandleFunc("DELETE /receipts/{id}", s.handleDeleteReceipt)

	mux.HandleFunc("POST /reset", s.handleReset)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(clientIP, nil)

	var handler http.Handler = mux
	handler = limited(handler)
	handler = headers.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{Addr: addr, Handler: handler}
	return s
}

// Shutdown stops the HTTP server and the limiter's cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// clientIP resolves the caller's address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
