// Package service implements the ledger analytics engine: FIFO realized-PnL
// accounting, counterparty insights aggregation, and the cache-backed
// insights orchestrator.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eferbarn/solfolio/internal/adapter"
	"github.com/eferbarn/solfolio/internal/config"
	"github.com/eferbarn/solfolio/internal/logging"
	"github.com/eferbarn/solfolio/internal/storage"
	"github.com/eferbarn/solfolio/internal/types"
)

// TransactionFetcher is the retrieval dependency of the analytics services
type TransactionFetcher interface {
	GetTransactions(ctx context.Context, p adapter.TransactionParams) ([]types.Transaction, error)
	GetTransactionsPaginated(ctx context.Context, p adapter.TransactionParams, maxTransactions int) ([]types.Transaction, error)
}

// CacheEntry wraps a computed InsightsResult for storage. Entries are
// replaced wholesale, never partially updated.
type CacheEntry struct {
	Address   string         `json:"address"`
	Data      InsightsResult `json:"data"`
	CachedAt  time.Time      `json:"cachedAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// InsightsView is an InsightsResult plus cache provenance for the caller
type InsightsView struct {
	InsightsResult
	Cached    bool   `json:"cached"`
	ExpiresIn string `json:"expiresIn,omitempty"`
}

// InsightsService orchestrates insights computation behind a time-boxed
// cache and exposes realized-PnL computation over the same transaction
// retrieval path.
type InsightsService struct {
	fetcher TransactionFetcher
	store   storage.Store
	cfg     config.InsightsConfig
	ttl     time.Duration
	logger  *logging.Logger
	now     func() time.Time
}

// NewInsightsService creates the analytics orchestrator
func NewInsightsService(fetcher TransactionFetcher, store storage.Store, cfg config.InsightsConfig, ttl time.Duration, logger *logging.Logger) *InsightsService {
	return &InsightsService{
		fetcher: fetcher,
		store:   store,
		cfg:     cfg,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// SetClock overrides the service's time source, for tests
func (s *InsightsService) SetClock(now func() time.Time) {
	s.now = now
}

// cacheKey builds the address-scoped cache key. Addresses are lowercased so
// casing differences cannot split cache entries.
func cacheKey(address string) string {
	return "insights:" + strings.ToLower(address)
}

// GetRealizedPnL fetches the wallet's transaction history and runs FIFO
// cost-basis accounting over it. Retrieval errors propagate unmodified.
func (s *InsightsService) GetRealizedPnL(ctx context.Context, address, chainID string) (RealizedPnL, error) {
	transactions, err := s.fetcher.GetTransactionsPaginated(ctx, adapter.TransactionParams{
		WalletAddress: address,
		ChainID:       chainID,
	}, s.cfg.MaxTransactions)
	if err != nil {
		return RealizedPnL{}, err
	}
	return CalculateRealizedPnL(transactions), nil
}

// GetInsights returns the wallet's insights, serving from cache when a live
// entry exists. An expired entry is deleted eagerly before recomputation.
// Cache read and write faults are absorbed: a failed read degrades to a
// miss, a failed write still returns the freshly computed result.
// Insights are always computed over the configured default chain; the cache
// key is address-scoped, so a per-request chain would make cached entries
// ambiguous.
func (s *InsightsService) GetInsights(ctx context.Context, address string) (*InsightsView, error) {
	key := cacheKey(address)
	now := s.now()

	if entry := s.readCache(ctx, key); entry != nil {
		if now.Before(entry.ExpiresAt) {
			s.logger.WithField("wallet", address).Debug("insights served from cache")
			return &InsightsView{
				InsightsResult: entry.Data,
				Cached:         true,
				ExpiresIn:      FormatExpiry(entry.ExpiresAt.Sub(now)),
			}, nil
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.WithError(err).Warn("failed to delete expired insights cache entry")
		}
	}

	transactions, err := s.fetcher.GetTransactionsPaginated(ctx, adapter.TransactionParams{
		WalletAddress: address,
	}, s.cfg.MaxTransactions)
	if err != nil {
		return nil, err
	}

	result := GenerateInsights(transactions, address, s.cfg.TopPartners, s.cfg.TreemapTopN)

	s.writeCache(ctx, key, CacheEntry{
		Address:   strings.ToLower(address),
		Data:      result,
		CachedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	})

	return &InsightsView{InsightsResult: result}, nil
}

// ClearCache drops the wallet's cached insights
func (s *InsightsService) ClearCache(ctx context.Context, address string) error {
	return s.store.Delete(ctx, cacheKey(address))
}

// readCache loads and decodes a cache entry. Any fault is logged and treated
// as a miss.
func (s *InsightsService) readCache(ctx context.Context, key string) *CacheEntry {
	value, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).Warn("insights cache read failed, treating as miss")
		return nil
	}
	if !ok {
		return nil
	}

	var entry CacheEntry
	if err := json.Unmarshal(value, &entry); err != nil {
		s.logger.WithError(err).Warn("corrupt insights cache entry, treating as miss")
		return nil
	}
	return &entry
}

// writeCache persists a cache entry. A write fault is logged only; the
// computation already succeeded.
func (s *InsightsService) writeCache(ctx context.Context, key string, entry CacheEntry) {
	value, err := json.Marshal(entry)
	if err != nil {
		s.logger.WithError(err).Warn("failed to marshal insights cache entry")
		return
	}
	if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.WithError(err).Warn("insights cache write failed, result not persisted")
	}
}

// FormatExpiry renders a remaining lifetime as "Xh Ym", or "Ym" under an
// hour. Negative durations clamp to zero.
func FormatExpiry(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	hours := int(remaining / time.Hour)
	minutes := int((remaining % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
