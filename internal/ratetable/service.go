package ratetable

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/quotelab/backend-quotes/internal/pricing"
)

// snapshotLoader abstracts the persistence behind snapshot resolution.
type snapshotLoader interface {
	Latest(ctx context.Context) (*pricing.Table, error)
	ByVersion(ctx context.Context, version int64) (*pricing.Table, error)
}

// Service resolves the consistent rate-table snapshot a calculation pass
// works from: cache first, then the store, validating and back-filling the
// cache on a miss. Every caller receives its own decoded value, so a
// concurrent administrative edit can never tear a calculation in progress.
type Service struct {
	Store  snapshotLoader
	Cache  *Cache
	Logger zerolog.Logger
}

// Snapshot returns the latest published snapshot.
func (s *Service) Snapshot(ctx context.Context) (*pricing.Table, error) {
	if version, err := s.Cache.LatestVersion(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("ratetable cache lookup failed")
	} else if version > 0 {
		table, err := s.Cache.GetVersion(ctx, version)
		if err != nil {
			s.Logger.Warn().Err(err).Int64("version", version).Msg("ratetable cache read failed")
		} else if table != nil {
			return table, nil
		}
	}
	table, err := s.Store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.validateAndFill(ctx, table)
}

// SnapshotVersion returns one pinned snapshot version, for re-rendering a
// historical quote against the rates it was sold at.
func (s *Service) SnapshotVersion(ctx context.Context, version int64) (*pricing.Table, error) {
	table, err := s.Cache.GetVersion(ctx, version)
	if err != nil {
		s.Logger.Warn().Err(err).Int64("version", version).Msg("ratetable cache read failed")
	} else if table != nil {
		return table, nil
	}
	table, err = s.Store.ByVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	return s.validateAndFill(ctx, table)
}

func (s *Service) validateAndFill(ctx context.Context, table *pricing.Table) (*pricing.Table, error) {
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("ratetable: snapshot %d failed validation: %w", table.Version, err)
	}
	if err := s.Cache.Store(ctx, table); err != nil {
		s.Logger.Warn().Err(err).Int64("version", table.Version).Msg("ratetable cache fill failed")
	}
	return table, nil
}
