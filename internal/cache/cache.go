package cache

import (
	"context"
	"time"

	"mobimaster/backend/internal/domain"
)

// BalanceCache holds computed customer balances keyed by identifier. Every
// ledger mutation invalidates the whole keyspace.
type BalanceCache interface {
	Get(ctx context.Context, key string) (*domain.CustomerBalance, bool, error)
	Set(ctx context.Context, key string, value *domain.CustomerBalance, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
}

type NoopBalanceCache struct{}

func (NoopBalanceCache) Get(_ context.Context, _ string) (*domain.CustomerBalance, bool, error) {
	return nil, false, nil
}

func (NoopBalanceCache) Set(_ context.Context, _ string, _ *domain.CustomerBalance, _ time.Duration) error {
	return nil
}

func (NoopBalanceCache) InvalidateAll(_ context.Context) error {
	return nil
}
