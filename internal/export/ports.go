// Package export defines the port for off-site transaction copies.
package export

import (
	"context"

	"monetra/internal/core"
)

// TransactionExporter appends stored transactions to an external copy
// and removes them again on delete. The Google Sheets adapter is the
// production implementation.
type TransactionExporter interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
	Delete(ctx context.Context, id string) error
}
