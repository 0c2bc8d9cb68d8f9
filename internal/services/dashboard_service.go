package services

import (
	"context"
	"fmt"
	"time"

	"monetra/internal/cache"
	"monetra/internal/core"
	"monetra/internal/ledger"
)

const (
	dashboardCacheTTL     = 30 * time.Second
	dashboardCacheCleanup = 5 * time.Minute
)

// DashboardService computes the read-side aggregates with a small
// LRU+TTL cache in front. Writes invalidate the whole cache via the
// transaction service's OnWrite hook.
type DashboardService struct {
	store    ledger.TransactionStore
	balance  *cache.LRUCache[core.Money]
	upcoming *cache.LRUCache[core.UpcomingSummary]
	reports  *cache.LRUCache[core.MonthlyReport]
	cleaner  *cache.Manager
	now      func() core.Date
}

func NewDashboardService(store ledger.TransactionStore) *DashboardService {
	s := &DashboardService{
		store:    store,
		balance:  cache.NewLRUCache[core.Money](4, dashboardCacheTTL),
		upcoming: cache.NewLRUCache[core.UpcomingSummary](4, dashboardCacheTTL),
		reports:  cache.NewLRUCache[core.MonthlyReport](24, dashboardCacheTTL),
		cleaner:  cache.NewManager(),
		now:      core.Today,
	}
	s.cleaner.Register(s.balance)
	s.cleaner.Register(s.upcoming)
	s.cleaner.Register(s.reports)
	s.cleaner.StartCleanup(dashboardCacheCleanup)
	return s
}

// Stop halts the background cache cleanup.
func (s *DashboardService) Stop() {
	s.cleaner.Stop()
}

// Invalidate drops every cached aggregate.
func (s *DashboardService) Invalidate() {
	s.balance.Clear()
	s.upcoming.Clear()
	s.reports.Clear()
}

// Balance returns the available balance: everything dated up to today,
// income adding, all other types subtracting.
func (s *DashboardService) Balance(ctx context.Context) (core.Money, error) {
	today := s.now()
	key := "balance:" + today.String()
	if cached, ok := s.balance.Get(key); ok {
		return cached, nil
	}

	all, err := s.store.List(ctx, ledger.Filter{})
	if err != nil {
		return core.Money{}, fmt.Errorf("list transactions: %w", err)
	}
	result := core.AvailableBalance(all, today)
	s.balance.Set(key, result)
	return result, nil
}

// Upcoming returns pending scheduled payments sorted by days until due.
func (s *DashboardService) Upcoming(ctx context.Context) (core.UpcomingSummary, error) {
	today := s.now()
	key := "upcoming:" + today.String()
	if cached, ok := s.upcoming.Get(key); ok {
		return cached, nil
	}

	all, err := s.store.List(ctx, ledger.Filter{})
	if err != nil {
		return core.UpcomingSummary{}, fmt.Errorf("list transactions: %w", err)
	}
	result := core.Upcoming(all, today)
	s.upcoming.Set(key, result)
	return result, nil
}

// Report aggregates one calendar month.
func (s *DashboardService) Report(ctx context.Context, year, month int) (core.MonthlyReport, error) {
	key := fmt.Sprintf("report:%04d-%02d", year, month)
	if cached, ok := s.reports.Get(key); ok {
		return cached, nil
	}

	monthly, err := s.store.List(ctx, ledger.Filter{Year: year, Month: month})
	if err != nil {
		return core.MonthlyReport{}, fmt.Errorf("list month transactions: %w", err)
	}
	result := core.Report(monthly, year, month)
	s.reports.Set(key, result)
	return result, nil
}
