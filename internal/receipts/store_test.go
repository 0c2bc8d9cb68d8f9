package receipts

import (
	"context"
	"io"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestSaveAndOpen(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, err := s.Save(ctx, "invoice.pdf", "application/pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if info.ID == "" || info.Filename != "invoice.pdf" || info.Size != 9 {
		t.Fatalf("info: %+v", info)
	}

	rc, meta, err := s.Open(ctx, info.ID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if string(body) != "pdf-bytes" || meta.ContentType != "application/pdf" {
		t.Fatalf("body=%q meta=%+v", body, meta)
	}
}

func TestSaveStripsClientPath(t *testing.T) {
	s := newTestStore(t)
	info, err := s.Save(context.Background(), "../../etc/passwd.png", "image/png", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if info.Filename != "passwd.png" {
		t.Fatalf("filename = %q", info.Filename)
	}
}

func TestOpenMissing(t *testing.T) {
	s := newTestStore(t)
	if _, _, err := s.Open(context.Background(), "deadbeef"); err != ErrReceiptNotFound {
		t.Fatalf("got %v", err)
	}
	// Traversal-shaped ids are rejected outright.
	if _, _, err := s.Open(context.Background(), "../secret"); err != ErrReceiptNotFound {
		t.Fatalf("got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	info, _ := s.Save(ctx, "a.png", "image/png", strings.NewReader("x"))
	if err := s.Delete(ctx, info.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := s.Open(ctx, info.ID); err != ErrReceiptNotFound {
		t.Fatalf("still present: %v", err)
	}
	if err := s.Delete(ctx, info.ID); err != ErrReceiptNotFound {
		t.Fatalf("second delete: %v", err)
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.Save(ctx, "a.png", "image/png", strings.NewReader("x"))
	b, _ := s.Save(ctx, "b.pdf", "application/pdf", strings.NewReader("y"))
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, id := range []string{a.ID, b.ID} {
		if _, _, err := s.Open(ctx, id); err != ErrReceiptNotFound {
			t.Fatalf("receipt %s survived reset", id)
		}
	}
}
