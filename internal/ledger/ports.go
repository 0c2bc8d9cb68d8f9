package ledger

import (
	"context"
	"io"

	"monetra/internal/core"
)

// Filter narrows List results. Zero value means no filtering.
type Filter struct {
	Year      int // with Month, restrict to one calendar month
	Month     int
	Recurring *bool
}

// ReceiptInfo describes a stored receipt blob.
type ReceiptInfo struct {
	ID          string `json:"receipt_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Ports for outbound adapters.
type (
	// TransactionStore is the persistence port for the ledger. Insert
	// writes a whole batch (anchor plus expanded siblings) as one unit;
	// DeleteSeries removes every record matching the series pivot so the
	// cutover cannot interleave with concurrent writers mid-way.
	TransactionStore interface {
		Insert(ctx context.Context, batch []core.Transaction) error
		Get(ctx context.Context, id string) (core.Transaction, error)
		List(ctx context.Context, f Filter) ([]core.Transaction, error)
		Update(ctx context.Context, t core.Transaction) error
		Delete(ctx context.Context, id string) error
		DeleteSeries(ctx context.Context, pivot core.Transaction) (int, error)
		ClearReceiptRefs(ctx context.Context, receiptID string) error
		Reset(ctx context.Context) error
	}

	// ReceiptStore holds uploaded receipt blobs.
	ReceiptStore interface {
		Save(ctx context.Context, filename, contentType string, r io.Reader) (ReceiptInfo, error)
		Open(ctx context.Context, id string) (io.ReadCloser, ReceiptInfo, error)
		Delete(ctx context.Context, id string) error
		Reset(ctx context.Context) error
	}

	// Scanner extracts the embedded QR payload text from a receipt
	// document. Image and PDF decoding happens behind this boundary.
	Scanner interface {
		ScanQR(ctx context.Context, r io.Reader, contentType string) (payload string, err error)
	}
)
