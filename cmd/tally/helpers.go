package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mhartley/tally/internal/cli"
	"github.com/mhartley/tally/internal/config"
	"github.com/mhartley/tally/internal/ledger"
	"github.com/mhartley/tally/internal/model"
	"github.com/mhartley/tally/internal/refdata"
	"github.com/mhartley/tally/internal/session"
	"github.com/mhartley/tally/internal/storage"
)

// app bundles the pieces every networked command needs.
type app struct {
	settings *config.Settings
	session  *session.Session
	client   *ledger.Client
}

// newApp loads settings and wires the session guard to the ledger client.
// The forced-logout callback prints once no matter how many parallel
// requests hit the expired token.
func newApp() (*app, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := session.NewFileStore(settings.CredentialPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	sess := session.New(store, func() {
		fmt.Fprintln(os.Stderr, cli.FormatWarning("Session expired. Run 'tally auth login' to sign in again."))
	})

	client := ledger.New(settings.ServerURL, sess,
		ledger.WithTimeout(settings.RequestTimeout))

	return &app{
		settings: settings,
		session:  sess,
		client:   client,
	}, nil
}

// requireUser returns the signed-in user id or a sign-in hint.
func (a *app) requireUser() (string, error) {
	userID := a.session.UserID()
	if userID == "" {
		return "", fmt.Errorf("not signed in - run 'tally auth login' first")
	}
	return userID, nil
}

// storeBundle writes the fetched collections into the cache, skipping any
// that failed so their previous snapshot stays usable. Returns how many
// collections were stored.
func storeBundle(ctx context.Context, cache *storage.Cache, bundle *refdata.Bundle) (int, error) {
	stored := 0
	if _, failed := bundle.Failures()["accounts"]; !failed {
		if err := cache.ReplaceAccounts(ctx, bundle.Accounts); err != nil {
			return stored, err
		}
		stored++
	}
	for _, collection := range []struct {
		kind     model.RefKind
		entities []model.RefEntity
		failKey  string
	}{
		{model.KindCategory, bundle.Categories, "categories"},
		{model.KindMerchant, bundle.Merchants, "merchants"},
		{model.KindPaymentMethod, bundle.PaymentMethods, "payment methods"},
	} {
		if _, failed := bundle.Failures()[collection.failKey]; failed {
			continue
		}
		if err := cache.ReplaceRefEntities(ctx, collection.kind, collection.entities); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

// openCache opens the local reference-data cache and brings its schema up
// to date.
func (a *app) openCache(ctx context.Context) (*storage.Cache, error) {
	cache, err := storage.NewCache(a.settings.CachePath)
	if err != nil {
		return nil, err
	}
	if err := cache.Migrate(ctx); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to run cache migrations: %w", err)
	}
	return cache, nil
}
