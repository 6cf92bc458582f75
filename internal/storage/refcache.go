package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mhartley/tally/internal/model"
)

// ReplaceAccounts swaps the cached account list for a fresh one.
func (c *Cache) ReplaceAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("failed to clear accounts: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO accounts
		(id, name, type, currency_code, current_balance, archived)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, a := range accounts {
		if _, err := stmt.ExecContext(ctx, a.ID, a.Name, a.Type, a.CurrencyCode, int64(a.CurrentBalance), a.Archived); err != nil {
			return fmt.Errorf("failed to insert account %s: %w", a.ID, err)
		}
	}

	if err := setSyncedAt(ctx, tx, "accounts"); err != nil {
		return err
	}
	return tx.Commit()
}

// Accounts returns the cached accounts, ordered by name.
func (c *Cache) Accounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `SELECT id, name, type, currency_code, current_balance, archived
		FROM accounts ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		var balance int64
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.CurrencyCode, &balance, &a.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.CurrentBalance = model.Amount(balance)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ResolveAccount resolves an id or a (case-insensitive) unique name to a
// cached account.
func (c *Cache) ResolveAccount(ctx context.Context, ref string) (*model.Account, error) {
	if err := validateString(ref, "ref"); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `SELECT id, name, type, currency_code, current_balance, archived
		FROM accounts WHERE id = ?1 OR name = ?1 COLLATE NOCASE`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []model.Account
	for rows.Next() {
		var a model.Account
		var balance int64
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.CurrencyCode, &balance, &a.Archived); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.CurrentBalance = model.Amount(balance)
		matches = append(matches, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("account %q: %w (run 'tally sync')", ref, ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("account %q: %w", ref, ErrAmbiguous)
	}
}

// ReplaceRefEntities swaps one kind's cached rows for a fresh list.
func (c *Cache) ReplaceRefEntities(ctx context.Context, kind model.RefKind, entities []model.RefEntity) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ref_entities WHERE kind = ?`, kind.Name); err != nil {
		return fmt.Errorf("failed to clear %s cache: %w", kind.Name, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO ref_entities (kind, id, name, type) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entities {
		if _, err := stmt.ExecContext(ctx, kind.Name, e.ID, e.Name, e.Type); err != nil {
			return fmt.Errorf("failed to insert %s %s: %w", kind.Name, e.ID, err)
		}
	}

	if err := setSyncedAt(ctx, tx, kind.Name); err != nil {
		return err
	}
	return tx.Commit()
}

// RefEntities returns one kind's cached rows, ordered by name.
func (c *Cache) RefEntities(ctx context.Context, kind model.RefKind) ([]model.RefEntity, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `SELECT id, name, type FROM ref_entities
		WHERE kind = ? ORDER BY name COLLATE NOCASE`, kind.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s cache: %w", kind.Name, err)
	}
	defer func() { _ = rows.Close() }()

	var entities []model.RefEntity
	for rows.Next() {
		var e model.RefEntity
		var typ sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind.Name, err)
		}
		e.Type = typ.String
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// ResolveRefEntity resolves an id or unique name within one kind.
func (c *Cache) ResolveRefEntity(ctx context.Context, kind model.RefKind, ref string) (*model.RefEntity, error) {
	if err := validateString(ref, "ref"); err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx, `SELECT id, name, type FROM ref_entities
		WHERE kind = ?1 AND (id = ?2 OR name = ?2 COLLATE NOCASE)`, kind.Name, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s cache: %w", kind.Name, err)
	}
	defer func() { _ = rows.Close() }()

	var matches []model.RefEntity
	for rows.Next() {
		var e model.RefEntity
		var typ sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", kind.Name, err)
		}
		e.Type = typ.String
		matches = append(matches, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%s %q: %w (run 'tally sync')", kind.Name, ref, ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%s %q: %w", kind.Name, ref, ErrAmbiguous)
	}
}

// SyncedAt reports when a collection was last replaced, or zero time.
func (c *Cache) SyncedAt(ctx context.Context, collection string) (time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return time.Time{}, err
	}

	var at time.Time
	err := c.db.QueryRowContext(ctx, `SELECT synced_at FROM sync_state WHERE collection = ?`, collection).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read sync state: %w", err)
	}
	return at, nil
}

func setSyncedAt(ctx context.Context, tx *sql.Tx, collection string) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO sync_state (collection, synced_at) VALUES (?, ?)
		ON CONFLICT(collection) DO UPDATE SET synced_at = excluded.synced_at`,
		collection, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to record sync time for %s: %w", collection, err)
	}
	return nil
}
