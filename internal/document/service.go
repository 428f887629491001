package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quotelab/backend-quotes/internal/events"
	"github.com/quotelab/backend-quotes/internal/obs"
	"github.com/quotelab/backend-quotes/internal/pricing"
	"github.com/quotelab/backend-quotes/internal/quote"
	"github.com/quotelab/backend-quotes/internal/renderer"
)

type quotes interface {
	Get(ctx context.Context, id uuid.UUID) (quote.Record, error)
	Update(ctx context.Context, rec quote.Record) (quote.Record, error)
}

type snapshots interface {
	Snapshot(ctx context.Context) (*pricing.Table, error)
}

type renders interface {
	Render(ctx context.Context, payload renderer.Payload) (renderer.Result, error)
}

// Service runs the export pass: recompute, integrity-check, render.
type Service struct {
	Quotes    quotes
	Snapshots snapshots
	Renderer  renders
	Bus       *events.Bus
	Logger    zerolog.Logger
}

// Export recomputes the quote against the current rate table, cross-checks
// the totals about to print, and delivers the document to the renderer.
// Integrity warnings are logged for investigation but never block the
// export or reach the customer.
func (s *Service) Export(ctx context.Context, quoteID uuid.UUID) (renderer.Result, error) {
	start := time.Now()
	result, err := s.export(ctx, quoteID)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if obs.QuoteExportsTotal != nil {
		obs.QuoteExportsTotal.WithLabelValues(outcome).Inc()
	}
	if obs.QuoteExportLatency != nil {
		obs.QuoteExportLatency.Observe(obs.DurationMillis(time.Since(start)))
	}
	return result, err
}

func (s *Service) export(ctx context.Context, quoteID uuid.UUID) (renderer.Result, error) {
	rec, err := s.Quotes.Get(ctx, quoteID)
	if err != nil {
		return renderer.Result{}, err
	}
	table, err := s.Snapshots.Snapshot(ctx)
	if err != nil {
		return renderer.Result{}, err
	}

	// Cached totals are never printed as-is. The scenario may have moved
	// under the columns since they were computed, so the export always
	// re-derives the whole batch.
	fresh, notes := table.Recalculate(rec.Columns, rec.Scenario)
	for _, note := range notes {
		s.Logger.Warn().
			Err(note.Err).
			Str("quote", rec.ID.String()).
			Int("column", note.Index).
			Msg("export recalculation failed for column, printing cached values")
		if obs.QuoteRecalcFallbacks != nil {
			obs.QuoteRecalcFallbacks.Inc()
		}
	}
	for i := range fresh {
		fresh[i] = table.ApplyPrepaid(fresh[i], rec.Prepaid)
	}

	doc := pricing.DocumentTotals{
		TotalMonthly:   rec.Columns[0].TotalMonthly,
		Implementation: rec.Columns[0].Implementation,
		Seats:          rec.Scenario.Usage.Seats,
	}
	for _, warning := range pricing.ValidateIntegrity(doc, fresh) {
		s.Logger.Warn().
			Str("quote", rec.ID.String()).
			Str("code", warning.Code).
			Int64("expected", warning.Expected).
			Int64("actual", warning.Actual).
			Msg(warning.Message)
		if obs.QuoteIntegrityWarnings != nil {
			obs.QuoteIntegrityWarnings.WithLabelValues(warning.Code).Inc()
		}
	}

	rec.Columns = fresh
	rec.RateTableVersion = table.Version
	if rec, err = s.Quotes.Update(ctx, rec); err != nil {
		return renderer.Result{}, err
	}

	columns, err := json.Marshal(fresh)
	if err != nil {
		return renderer.Result{}, fmt.Errorf("document: encode columns: %w", err)
	}
	result, err := s.Renderer.Render(ctx, renderer.Payload{
		QuoteID:          rec.ID.String(),
		Reference:        rec.Reference,
		RateTableVersion: rec.RateTableVersion,
		Columns:          columns,
		GeneratedAt:      time.Now().UTC(),
	})
	if err != nil {
		return renderer.Result{}, err
	}

	if s.Bus != nil {
		payload := map[string]any{
			"reference":        rec.Reference,
			"rateTableVersion": rec.RateTableVersion,
			"documentUrl":      result.DocumentURL,
		}
		if _, err := s.Bus.Emit(ctx, events.TopicQuoteExported, rec.ID, payload); err != nil {
			s.Logger.Warn().Err(err).Str("quote", rec.ID.String()).Msg("emit quote.exported failed")
		}
	}
	return result, nil
}
