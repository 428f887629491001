package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotelab/backend-quotes/internal/events"
	"github.com/quotelab/backend-quotes/internal/obs"
	"github.com/quotelab/backend-quotes/internal/pricing"
)

// ErrColumnIndex indicates a column edit addressed a slot that does not exist.
var ErrColumnIndex = errors.New("quote: column index out of range")

type snapshots interface {
	Snapshot(ctx context.Context) (*pricing.Table, error)
}

type storage interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
}

// Service computes quote proposals and keeps persisted quotes consistent
// with their scenario.
type Service struct {
	Snapshots snapshots
	Store     storage
	Bus       *events.Bus
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// Proposal is a stateless computation result: the full comparison column
// set for one scenario against the current rate table.
type Proposal struct {
	RateTableVersion int64            `json:"rateTableVersion"`
	Recommended      pricing.BundleID `json:"recommended"`
	Columns          []pricing.Column `json:"columns"`
}

// ColumnEdit is the payload of a per-column edit: an override set for the
// edited column and optionally new quote-level prepaid flags.
type ColumnEdit struct {
	Overrides *pricing.Overrides    `json:"overrides"`
	Prepaid   *pricing.PrepaidFlags `json:"prepaid"`
}

// Preview computes the comparison column set without persisting anything.
func (s *Service) Preview(ctx context.Context, scenario pricing.Scenario) (Proposal, error) {
	if err := s.validate(scenario); err != nil {
		return Proposal{}, err
	}
	table, err := s.Snapshots.Snapshot(ctx)
	if err != nil {
		return Proposal{}, err
	}
	columns, recommended, err := buildColumns(table, scenario, pricing.PrepaidFlags{})
	if err != nil {
		return Proposal{}, err
	}
	return Proposal{
		RateTableVersion: table.Version,
		Recommended:      recommended,
		Columns:          columns,
	}, nil
}

// Create computes and persists a quote for later sharing and export.
func (s *Service) Create(ctx context.Context, reference string, scenario pricing.Scenario) (Record, error) {
	if err := s.validate(scenario); err != nil {
		return Record{}, err
	}
	table, err := s.Snapshots.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}
	columns, recommended, err := buildColumns(table, scenario, pricing.PrepaidFlags{})
	if err != nil {
		return Record{}, err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		reference = newReference()
	}
	rec, err := s.Store.Insert(ctx, Record{
		Reference:        reference,
		Scenario:         scenario,
		Recommended:      recommended,
		Columns:          columns,
		RateTableVersion: table.Version,
	})
	if err != nil {
		return Record{}, err
	}
	s.emitComputed(ctx, rec)
	return rec, nil
}

// Get loads a persisted quote.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	return s.Store.Get(ctx, id)
}

// EditColumn rewrites one comparison column from an override set. The slot
// at len(columns) appends a fresh custom column. Every edit recomputes from
// the scenario against the current snapshot; cached amounts are never
// patched in place.
func (s *Service) EditColumn(ctx context.Context, id uuid.UUID, idx int, edit ColumnEdit) (Record, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if idx < 0 || idx > len(rec.Columns) {
		return Record{}, ErrColumnIndex
	}
	table, err := s.Snapshots.Snapshot(ctx)
	if err != nil {
		return Record{}, err
	}

	if edit.Prepaid != nil {
		rec.Prepaid = *edit.Prepaid
	}

	recommended := pricing.RecommendFor(rec.Scenario)
	col, err := table.ComputeCustomColumn(rec.Scenario, edit.Overrides, recommended)
	if err != nil {
		countColumn(string(pricing.ColumnCustom), "error")
		return Record{}, err
	}
	countColumn(string(pricing.ColumnCustom), "ok")
	col = table.ApplyPrepaid(col, rec.Prepaid)

	if idx == len(rec.Columns) {
		rec.Columns = append(rec.Columns, col)
	} else {
		rec.Columns[idx] = col
	}

	// Prepaid flag changes reach every column, not just the edited one.
	if edit.Prepaid != nil {
		fresh, notes := table.Recalculate(rec.Columns, rec.Scenario)
		for _, note := range notes {
			s.Logger.Warn().Err(note.Err).Int("column", note.Index).Msg("column recalculation failed, serving cached")
			if obs.QuoteRecalcFallbacks != nil {
				obs.QuoteRecalcFallbacks.Inc()
			}
		}
		for i := range fresh {
			fresh[i] = table.ApplyPrepaid(fresh[i], rec.Prepaid)
		}
		// keep the column just edited as computed above
		if idx < len(fresh) {
			fresh[idx] = col
		}
		rec.Columns = fresh
	}

	rec.Recommended = recommended
	rec.RateTableVersion = table.Version
	rec, err = s.Store.Update(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.emitComputed(ctx, rec)
	return rec, nil
}

func (s *Service) validate(scenario pricing.Scenario) error {
	if s.Validator == nil {
		return nil
	}
	if err := s.Validator.Struct(scenario); err != nil {
		return fmt.Errorf("quote: invalid scenario: %w", err)
	}
	return nil
}

func (s *Service) emitComputed(ctx context.Context, rec Record) {
	if s.Bus == nil {
		return
	}
	payload := map[string]any{
		"reference":        rec.Reference,
		"rateTableVersion": rec.RateTableVersion,
		"columns":          len(rec.Columns),
		"recommended":      rec.Recommended,
	}
	if _, err := s.Bus.Emit(ctx, events.TopicQuoteComputed, rec.ID, payload); err != nil {
		s.Logger.Warn().Err(err).Str("quote", rec.ID.String()).Msg("emit quote.computed failed")
	}
}

// buildColumns produces the canonical comparison set: the no-bundle
// baseline followed by one column per eligible bundle.
func buildColumns(table *pricing.Table, scenario pricing.Scenario, prepaid pricing.PrepaidFlags) ([]pricing.Column, pricing.BundleID, error) {
	recommended := pricing.RecommendFor(scenario)

	baseline, err := table.ComputeColumn(pricing.BundleNone, scenario, recommended)
	if err != nil {
		countColumn(string(pricing.ColumnBaseline), "error")
		return nil, pricing.BundleNone, err
	}
	countColumn(string(pricing.ColumnBaseline), "ok")

	columns := []pricing.Column{table.ApplyPrepaid(baseline, prepaid)}
	for _, id := range table.EligibleBundles(scenario.Selection) {
		col, err := table.ComputeColumn(id, scenario, recommended)
		if err != nil {
			countColumn(string(pricing.ColumnBundle), "error")
			return nil, pricing.BundleNone, err
		}
		countColumn(string(pricing.ColumnBundle), "ok")
		columns = append(columns, table.ApplyPrepaid(col, prepaid))
	}
	return columns, recommended, nil
}

func countColumn(kind, result string) {
	if obs.QuoteColumnsComputed != nil {
		obs.QuoteColumnsComputed.WithLabelValues(kind, result).Inc()
	}
}

func newReference() string {
	id := uuid.NewString()
	return "Q-" + strings.ToUpper(id[:8])
}
