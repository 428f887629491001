package ratetable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotelab/backend-quotes/internal/pricing"
)

// ErrNoSnapshot is returned when no rate table has ever been published.
var ErrNoSnapshot = errors.New("ratetable: no published snapshot")

// Store persists versioned rate-table snapshots as JSONB rows. Snapshots
// are append-only; publishing a new version never rewrites an old one, so a
// calculation pinned to a version stays reproducible.
type Store struct {
	Pool *pgxpool.Pool
}

// Latest loads the highest published snapshot version.
func (s *Store) Latest(ctx context.Context) (*pricing.Table, error) {
	const q = `SELECT payload FROM rate_tables ORDER BY version DESC LIMIT 1`
	return s.scanSnapshot(s.Pool.QueryRow(ctx, q))
}

// ByVersion loads one pinned snapshot version.
func (s *Store) ByVersion(ctx context.Context, version int64) (*pricing.Table, error) {
	const q = `SELECT payload FROM rate_tables WHERE version = $1`
	return s.scanSnapshot(s.Pool.QueryRow(ctx, q, version))
}

// Publish appends a new snapshot version.
func (s *Store) Publish(ctx context.Context, table *pricing.Table, publishedBy string) error {
	if table == nil {
		return errors.New("ratetable: nil snapshot")
	}
	if err := table.Validate(); err != nil {
		return fmt.Errorf("ratetable: validate snapshot: %w", err)
	}
	payload, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("ratetable: encode snapshot: %w", err)
	}
	const q = `
		INSERT INTO rate_tables (version, payload, published_by, published_at)
		VALUES ($1, $2, $3, $4)`
	_, err = s.Pool.Exec(ctx, q, table.Version, payload, publishedBy, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("ratetable: publish version %d: %w", table.Version, err)
	}
	return nil
}

// NextVersion returns the version number the next published snapshot
// should carry.
func (s *Store) NextVersion(ctx context.Context) (int64, error) {
	const q = `SELECT COALESCE(MAX(version), 0) + 1 FROM rate_tables`
	var next int64
	if err := s.Pool.QueryRow(ctx, q).Scan(&next); err != nil {
		return 0, fmt.Errorf("ratetable: next version: %w", err)
	}
	return next, nil
}

func (s *Store) scanSnapshot(row pgx.Row) (*pricing.Table, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("ratetable: load snapshot: %w", err)
	}
	var table pricing.Table
	if err := json.Unmarshal(payload, &table); err != nil {
		return nil, fmt.Errorf("ratetable: decode snapshot: %w", err)
	}
	return &table, nil
}
