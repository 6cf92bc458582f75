// Package refdata prefetches the reference data an entry form needs:
// accounts, categories, merchants and payment methods. The four fetches are
// independent and run concurrently; one failing must not stop the others
// from populating.
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mhartley/tally/internal/model"
)

// Fetcher is the slice of the ledger client the prefetch runs through.
type Fetcher interface {
	ListAccounts(ctx context.Context, userID string, includeArchived bool) ([]model.Account, error)
	ListRefEntities(ctx context.Context, kind model.RefKind, userID, typeFilter string) ([]model.RefEntity, error)
}

const collections = 4

// Bundle is the result of one prefetch. Collections that failed are left
// empty with their error recorded under the collection name.
type Bundle struct {
	Accounts       []model.Account
	Categories     []model.RefEntity
	Merchants      []model.RefEntity
	PaymentMethods []model.RefEntity

	mu       sync.Mutex
	failures map[string]error
}

// Complete reports whether every collection loaded.
func (b *Bundle) Complete() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.failures) == 0
}

// Failures returns the per-collection errors, keyed by collection name.
func (b *Bundle) Failures() map[string]error {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]error, len(b.failures))
	for k, v := range b.failures {
		out[k] = v
	}
	return out
}

// Err returns an error only when nothing loaded at all; a partial bundle is
// still usable for the collections that did arrive.
func (b *Bundle) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.failures) < collections {
		return nil
	}
	return fmt.Errorf("all reference data fetches failed: %v", b.failures)
}

func (b *Bundle) recordFailure(name string, err error) {
	slog.Warn("Reference data fetch failed", "collection", name, "error", err)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[name] = err
}

// Prefetch loads everything concurrently and waits for all four fetches.
// categoryType narrows categories to EXPENSE or INCOME; empty loads all.
func Prefetch(ctx context.Context, fetcher Fetcher, userID, categoryType string) *Bundle {
	bundle := &Bundle{failures: make(map[string]error)}

	var g errgroup.Group
	g.Go(func() error {
		accounts, err := fetcher.ListAccounts(ctx, userID, false)
		if err != nil {
			bundle.recordFailure("accounts", err)
			return nil
		}
		bundle.Accounts = accounts
		return nil
	})
	g.Go(func() error {
		categories, err := fetcher.ListRefEntities(ctx, model.KindCategory, userID, categoryType)
		if err != nil {
			bundle.recordFailure("categories", err)
			return nil
		}
		bundle.Categories = categories
		return nil
	})
	g.Go(func() error {
		merchants, err := fetcher.ListRefEntities(ctx, model.KindMerchant, userID, "")
		if err != nil {
			bundle.recordFailure("merchants", err)
			return nil
		}
		bundle.Merchants = merchants
		return nil
	})
	g.Go(func() error {
		methods, err := fetcher.ListRefEntities(ctx, model.KindPaymentMethod, userID, "")
		if err != nil {
			bundle.recordFailure("payment methods", err)
			return nil
		}
		bundle.PaymentMethods = methods
		return nil
	})

	_ = g.Wait()
	return bundle
}
