// Package backend assembles the stores and services behind the HTTP
// server for the configured storage flavor.
package backend

import (
	"context"

	"monetra/internal/receipts"
	"monetra/internal/services"
)

// BackendType selects the storage flavor.
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result carries the assembled collaborators plus an optional cleanup.
type Result struct {
	Transactions *services.TransactionService
	Dashboards   *services.DashboardService
	Receipts     *receipts.Store
	Cleanup      CleanupFunc
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}
