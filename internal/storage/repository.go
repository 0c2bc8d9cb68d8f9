package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"monetra/internal/core"
	"monetra/internal/ledger"

	_ "modernc.org/sqlite"
)

// Sync states for the export pipeline.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const insertSQL = `INSERT INTO transactions
	(id, type, label, amount_cents, date, category, recurring, receipt_id, sync_status)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Insert writes the whole batch inside one database transaction so an
// anchor and its expanded siblings land together or not at all.
func (r *SQLiteRepository) Insert(ctx context.Context, batch []core.Transaction) error {
	for _, t := range batch {
		if err := t.Validate(); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range batch {
		if _, err := stmt.ExecContext(ctx,
			t.ID, string(t.Type), t.Label, t.Amount.Cents, t.Date.String(),
			t.Category, boolToInt(t.Recurring), t.ReceiptID, SyncPending,
		); err != nil {
			return fmt.Errorf("insert transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}

	slog.InfoContext(ctx, "Transactions saved to SQLite", "count", len(batch))
	return nil
}

const selectColumns = `id, type, label, amount_cents, date, category, recurring, receipt_id`

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) List(ctx context.Context, f ledger.Filter) ([]core.Transaction, error) {
	query := `SELECT ` + selectColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	if f.Year != 0 {
		query += ` AND substr(date, 1, 7) = ?`
		args = append(args, fmt.Sprintf("%04d-%02d", f.Year, f.Month))
	}
	if f.Recurring != nil {
		query += ` AND recurring = ?`
		args = append(args, boolToInt(*f.Recurring))
	}
	query += ` ORDER BY date, created_at`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) Update(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, label = ?, amount_cents = ?, date = ?,
			category = ?, recurring = ?, receipt_id = ?, sync_status = ?
			WHERE id = ?`,
		string(t.Type), t.Label, t.Amount.Cents, t.Date.String(),
		t.Category, boolToInt(t.Recurring), t.ReceiptID, SyncPending, t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteSeries removes every recurring record sharing the pivot's label
// dated on or after the pivot. Dates are stored as YYYY-MM-DD so the
// comparison stays in SQL.
func (r *SQLiteRepository) DeleteSeries(ctx context.Context, pivot core.Transaction) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE recurring = 1 AND label = ? AND date >= ?`,
		pivot.Label, pivot.Date.String())
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete series rows affected: %w", err)
	}
	return int(n), nil
}

// ClearReceiptRefs detaches a deleted receipt. The touched rows drop
// back to pending sync so the worker's sweep re-exports them.
func (r *SQLiteRepository) ClearReceiptRefs(ctx context.Context, receiptID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET receipt_id = '', sync_status = ? WHERE receipt_id = ?`,
		SyncPending, receiptID); err != nil {
		return fmt.Errorf("clear receipt refs: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("reset transactions: %w", err)
	}
	slog.InfoContext(ctx, "Transaction store cleared")
	return nil
}

// PendingSyncTransaction is the minimal payload for export queue messages.
type PendingSyncTransaction struct {
	ID        string
	CreatedAt time.Time
}

// GetPendingSync returns transactions not yet exported, oldest first.
func (r *SQLiteRepository) GetPendingSync(ctx context.Context, limit int) ([]PendingSyncTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at FROM transactions WHERE sync_status = ? ORDER BY created_at LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync transactions: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncTransaction
	for rows.Next() {
		var p PendingSyncTransaction
		var created string
		if err := rows.Scan(&p.ID, &created); err != nil {
			return nil, fmt.Errorf("scan pending sync row: %w", err)
		}
		p.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records a successful export.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	slog.InfoContext(ctx, "Transaction marked as synced", "id", id)
	return nil
}

// MarkSyncError records a failed export for the periodic sweep to retry.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		typ       string
		date      string
		recurring int
	)
	if err := row.Scan(&t.ID, &typ, &t.Label, &t.Amount.Cents, &date,
		&t.Category, &recurring, &t.ReceiptID); err != nil {
		return core.Transaction{}, err
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	t.Type = core.TransactionType(typ)
	t.Date = parsed
	t.Recurring = recurring != 0
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
