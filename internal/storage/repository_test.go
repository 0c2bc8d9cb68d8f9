package storage

import (
	"context"
	"path/filepath"
	"testing"

	"monetra/internal/core"
	"monetra/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "monetra.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tr := core.Transaction{
		ID: "t1", Type: core.Expense, Label: "Groceries",
		Amount: core.Money{Cents: 4550}, Date: core.NewDate(2025, 1, 15),
		Category: "Food",
	}
	if err := repo.Insert(ctx, []core.Transaction{tr}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := repo.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != tr {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, tr)
	}

	if _, err := repo.Get(ctx, "missing"); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInsertBatchIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	batch := []core.Transaction{
		{ID: "a", Type: core.Expense, Label: "ok", Date: core.NewDate(2025, 1, 1)},
		{ID: "a", Type: core.Expense, Label: "duplicate id", Date: core.NewDate(2025, 1, 2)},
	}
	if err := repo.Insert(ctx, batch); err == nil {
		t.Fatalf("expected primary key violation")
	}
	all, _ := repo.List(ctx, ledger.Filter{})
	if len(all) != 0 {
		t.Fatalf("partial batch persisted: %d rows", len(all))
	}
}

func TestListFilters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	seed := []core.Transaction{
		{ID: "jan", Type: core.Expense, Label: "Jan", Date: core.NewDate(2025, 1, 5)},
		{ID: "feb1", Type: core.Expense, Label: "Feb", Date: core.NewDate(2025, 2, 5)},
		{ID: "feb2", Type: core.ScheduledPayment, Label: "Rent", Date: core.NewDate(2025, 2, 1), Recurring: true},
	}
	if err := repo.Insert(ctx, seed); err != nil {
		t.Fatalf("insert: %v", err)
	}

	feb, err := repo.List(ctx, ledger.Filter{Year: 2025, Month: 2})
	if err != nil || len(feb) != 2 {
		t.Fatalf("feb: got %d err=%v", len(feb), err)
	}
	// Ordered by date within the month.
	if feb[0].ID != "feb2" {
		t.Fatalf("ordering: got %s first", feb[0].ID)
	}

	rec := true
	recOnly, err := repo.List(ctx, ledger.Filter{Recurring: &rec})
	if err != nil || len(recOnly) != 1 || recOnly[0].ID != "feb2" {
		t.Fatalf("recurring filter: %+v err=%v", recOnly, err)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tr := core.Transaction{ID: "t1", Type: core.Expense, Label: "Old", Date: core.NewDate(2025, 1, 1)}
	if err := repo.Insert(ctx, []core.Transaction{tr}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	tr.Label = "New"
	tr.Amount = core.Money{Cents: 999}
	if err := repo.Update(ctx, tr); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := repo.Get(ctx, "t1")
	if got.Label != "New" || got.Amount.Cents != 999 {
		t.Fatalf("got %+v", got)
	}

	if err := repo.Update(ctx, core.Transaction{ID: "nope", Type: core.Expense, Label: "x", Date: core.NewDate(2025, 1, 1)}); err != core.ErrNotFound {
		t.Fatalf("update missing: %v", err)
	}

	if err := repo.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "t1"); err != core.ErrNotFound {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestDeleteSeriesInSQL(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	var batch []core.Transaction
	for m := 1; m <= 12; m++ {
		batch = append(batch, core.Transaction{
			ID: core.NewDate(2024, m, 15).String(), Type: core.ScheduledPayment,
			Label: "Rent", Amount: core.Money{Cents: 1000},
			Date: core.NewDate(2024, m, 15), Recurring: true,
		})
	}
	batch = append(batch, core.Transaction{
		ID: "oneoff", Type: core.Expense, Label: "Rent", Date: core.NewDate(2024, 8, 15),
	})
	if err := repo.Insert(ctx, batch); err != nil {
		t.Fatalf("insert: %v", err)
	}

	pivot := core.Transaction{Label: "Rent", Date: core.NewDate(2024, 6, 15), Recurring: true}
	removed, err := repo.DeleteSeries(ctx, pivot)
	if err != nil || removed != 7 {
		t.Fatalf("removed %d err=%v, want 7", removed, err)
	}
	rest, _ := repo.List(ctx, ledger.Filter{})
	if len(rest) != 6 {
		t.Fatalf("%d survivors, want 6", len(rest))
	}
}

func TestClearReceiptRefs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, []core.Transaction{
		{ID: "a", Type: core.Expense, Label: "x", Date: core.NewDate(2025, 1, 1), ReceiptID: "r1"},
		{ID: "b", Type: core.Expense, Label: "y", Date: core.NewDate(2025, 1, 2), ReceiptID: "r2"},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.ClearReceiptRefs(ctx, "r1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	a, _ := repo.Get(ctx, "a")
	b, _ := repo.Get(ctx, "b")
	if a.ReceiptID != "" || b.ReceiptID != "r2" {
		t.Fatalf("refs: a=%q b=%q", a.ReceiptID, b.ReceiptID)
	}
}

func TestSyncLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, []core.Transaction{
		{ID: "a", Type: core.Expense, Label: "x", Date: core.NewDate(2025, 1, 1)},
		{ID: "b", Type: core.Expense, Label: "y", Date: core.NewDate(2025, 1, 2)},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending: %d err=%v", len(pending), err)
	}

	if err := repo.MarkSynced(ctx, "a"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, "b"); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	pending, _ = repo.GetPendingSync(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("still pending: %d", len(pending))
	}
}

func TestReset(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Insert(ctx, []core.Transaction{
		{ID: "a", Type: core.Expense, Label: "x", Date: core.NewDate(2025, 1, 1)},
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, _ := repo.List(ctx, ledger.Filter{})
	if len(all) != 0 {
		t.Fatalf("%d rows after reset", len(all))
	}
}
