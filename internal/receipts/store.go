// Package receipts stores uploaded receipt blobs on the local
// filesystem, one blob plus one JSON metadata sidecar per receipt.
package receipts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"monetra/internal/ledger"
)

var ErrReceiptNotFound = errors.New("receipt not found")

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create receipts directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the blob under a generated id. The stored name keeps the
// original extension only; the client's filename survives in metadata.
func (s *Store) Save(_ context.Context, filename, contentType string, r io.Reader) (ledger.ReceiptInfo, error) {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	blobPath := s.blobPath(id, filename)

	f, err := os.Create(blobPath)
	if err != nil {
		return ledger.ReceiptInfo{}, fmt.Errorf("create receipt blob: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(blobPath)
		return ledger.ReceiptInfo{}, fmt.Errorf("write receipt blob: %w", err)
	}

	info := ledger.ReceiptInfo{
		ID:          id,
		Filename:    filepath.Base(filename),
		ContentType: contentType,
		Size:        size,
	}
	meta, err := json.Marshal(info)
	if err != nil {
		os.Remove(blobPath)
		return ledger.ReceiptInfo{}, fmt.Errorf("marshal receipt metadata: %w", err)
	}
	if err := os.WriteFile(s.metaPath(id), meta, 0644); err != nil {
		os.Remove(blobPath)
		return ledger.ReceiptInfo{}, fmt.Errorf("write receipt metadata: %w", err)
	}

	return info, nil
}

// Open returns the blob stream and its metadata.
func (s *Store) Open(_ context.Context, id string) (io.ReadCloser, ledger.ReceiptInfo, error) {
	info, err := s.readMeta(id)
	if err != nil {
		return nil, ledger.ReceiptInfo{}, err
	}
	f, err := os.Open(s.blobPath(id, info.Filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ledger.ReceiptInfo{}, ErrReceiptNotFound
		}
		return nil, ledger.ReceiptInfo{}, fmt.Errorf("open receipt blob: %w", err)
	}
	return f, info, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	info, err := s.readMeta(id)
	if err != nil {
		return err
	}
	if err := os.Remove(s.blobPath(id, info.Filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove receipt blob: %w", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil {
		return fmt.Errorf("remove receipt metadata: %w", err)
	}
	return nil
}

// Reset removes every stored receipt.
func (s *Store) Reset(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read receipts directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (s *Store) readMeta(id string) (ledger.ReceiptInfo, error) {
	if !validID(id) {
		return ledger.ReceiptInfo{}, ErrReceiptNotFound
	}
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return ledger.ReceiptInfo{}, ErrReceiptNotFound
		}
		return ledger.ReceiptInfo{}, fmt.Errorf("read receipt metadata: %w", err)
	}
	var info ledger.ReceiptInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return ledger.ReceiptInfo{}, fmt.Errorf("decode receipt metadata: %w", err)
	}
	return info, nil
}

func (s *Store) blobPath(id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	return filepath.Join(s.dir, id+ext)
}

func (s *Store) metaPath(id string) string {
	// Distinct suffix so an uploaded ".json" blob never collides.
	return filepath.Join(s.dir, id+".meta.json")
}

// validID guards against path traversal through the id segment.
func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return false
		}
	}
	return true
}
