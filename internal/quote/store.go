package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quotelab/backend-quotes/internal/pricing"
)

// ErrNotFound indicates the requested quote does not exist.
var ErrNotFound = errors.New("quote: not found")

// ErrDuplicateReference indicates a quote with the same reference already exists.
var ErrDuplicateReference = errors.New("quote: duplicate reference")

// Record is one persisted quote: the shared scenario, the computed column
// set, and the snapshot version the numbers were derived from.
type Record struct {
	ID               uuid.UUID            `json:"id"`
	Reference        string               `json:"reference"`
	Scenario         pricing.Scenario     `json:"scenario"`
	Recommended      pricing.BundleID     `json:"recommended"`
	Columns          []pricing.Column     `json:"columns"`
	Prepaid          pricing.PrepaidFlags `json:"prepaid"`
	RateTableVersion int64                `json:"rateTableVersion"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// Store persists quotes in Postgres. Scenario and columns are stored as
// JSONB so column layout changes never need a schema migration.
type Store struct {
	Pool *pgxpool.Pool
}

// Insert persists a new quote and returns it with generated fields filled.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	scenario, columns, prepaid, err := encodeRecord(rec)
	if err != nil {
		return Record{}, err
	}
	row := s.Pool.QueryRow(ctx, `INSERT INTO quotes (reference, scenario, recommended, columns, prepaid, rate_table_version)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at`,
		rec.Reference, scenario, string(rec.Recommended), columns, prepaid, rec.RateTableVersion)
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicateReference
		}
		return Record{}, fmt.Errorf("quote: insert: %w", err)
	}
	return rec, nil
}

// Get loads a quote by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	row := s.Pool.QueryRow(ctx, `SELECT id, reference, scenario, recommended, columns, prepaid, rate_table_version, created_at, updated_at
FROM quotes WHERE id = $1`, id)
	return scanRecord(row)
}

// Update rewrites the mutable quote state after a recomputation.
func (s *Store) Update(ctx context.Context, rec Record) (Record, error) {
	scenario, columns, prepaid, err := encodeRecord(rec)
	if err != nil {
		return Record{}, err
	}
	row := s.Pool.QueryRow(ctx, `UPDATE quotes
SET scenario = $2, recommended = $3, columns = $4, prepaid = $5, rate_table_version = $6, updated_at = now()
WHERE id = $1
RETURNING updated_at`,
		rec.ID, scenario, string(rec.Recommended), columns, prepaid, rec.RateTableVersion)
	if err := row.Scan(&rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("quote: update: %w", err)
	}
	return rec, nil
}

func encodeRecord(rec Record) (scenario, columns, prepaid []byte, err error) {
	scenario, err = json.Marshal(rec.Scenario)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("quote: encode scenario: %w", err)
	}
	columns, err = json.Marshal(rec.Columns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("quote: encode columns: %w", err)
	}
	prepaid, err = json.Marshal(rec.Prepaid)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("quote: encode prepaid: %w", err)
	}
	return scenario, columns, prepaid, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec         Record
		scenario    []byte
		recommended string
		columns     []byte
		prepaid     []byte
	)
	err := row.Scan(&rec.ID, &rec.Reference, &scenario, &recommended, &columns, &prepaid, &rec.RateTableVersion, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("quote: scan: %w", err)
	}
	if err := json.Unmarshal(scenario, &rec.Scenario); err != nil {
		return Record{}, fmt.Errorf("quote: decode scenario: %w", err)
	}
	if err := json.Unmarshal(columns, &rec.Columns); err != nil {
		return Record{}, fmt.Errorf("quote: decode columns: %w", err)
	}
	if err := json.Unmarshal(prepaid, &rec.Prepaid); err != nil {
		return Record{}, fmt.Errorf("quote: decode prepaid: %w", err)
	}
	rec.Recommended = pricing.BundleID(recommended)
	return rec, nil
}
