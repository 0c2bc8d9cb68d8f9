// Package memory provides an in-process TransactionStore used by the
// default backend and by tests.
package memory

import (
	"context"
	"sync"

	"monetra/internal/core"
	"monetra/internal/ledger"
)

type Store struct {
	mu    sync.Mutex
	items []core.Transaction
}

func New() *Store {
	return &Store{}
}

// Insert appends the whole batch under one lock acquisition.
func (s *Store) Insert(_ context.Context, batch []core.Transaction) error {
	for _, t := range batch {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, batch...)
	return nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) List(_ context.Context, f ledger.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, t := range s.items {
		if f.Year != 0 && !t.Date.InMonth(f.Year, f.Month) {
			continue
		}
		if f.Recurring != nil && t.Recurring != *f.Recurring {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *Store) Update(_ context.Context, updated core.Transaction) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == updated.ID {
			s.items[i] = updated
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// DeleteSeries removes every record matching the pivot's series under a
// single lock acquisition and returns how many were removed.
func (s *Store) DeleteSeries(_ context.Context, pivot core.Transaction) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	removed := 0
	for _, t := range s.items {
		if core.MatchesSeries(t, pivot) {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.items = kept
	return removed, nil
}

// ClearReceiptRefs detaches the given receipt from any transaction.
func (s *Store) ClearReceiptRefs(_ context.Context, receiptID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ReceiptID == receiptID {
			s.items[i].ReceiptID = ""
		}
	}
	return nil
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}
