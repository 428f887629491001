package ratetable

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/backend-quotes/internal/pricing"
)

type stubLoader struct {
	latest    *pricing.Table
	byVersion map[int64]*pricing.Table
	calls     int
}

func (s *stubLoader) Latest(context.Context) (*pricing.Table, error) {
	s.calls++
	if s.latest == nil {
		return nil, ErrNoSnapshot
	}
	return s.latest, nil
}

func (s *stubLoader) ByVersion(_ context.Context, version int64) (*pricing.Table, error) {
	s.calls++
	table, ok := s.byVersion[version]
	if !ok {
		return nil, ErrNoSnapshot
	}
	return table, nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, "test", time.Minute)
}

func TestSnapshotFillsCacheOnMiss(t *testing.T) {
	table := DefaultTable()
	loader := &stubLoader{latest: table}
	svc := &Service{Store: loader, Cache: newTestCache(t), Logger: zerolog.Nop()}

	got, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, table.Version, got.Version)
	require.Equal(t, 1, loader.calls)

	// second resolution is served from the cache
	got, err = svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, table.Version, got.Version)
	require.Equal(t, 1, loader.calls)
}

func TestSnapshotVersionPinsHistorical(t *testing.T) {
	v1 := DefaultTable()
	v2 := DefaultTable()
	v2.Version = 2
	loader := &stubLoader{latest: v2, byVersion: map[int64]*pricing.Table{1: v1, 2: v2}}
	svc := &Service{Store: loader, Cache: newTestCache(t), Logger: zerolog.Nop()}

	got, err := svc.SnapshotVersion(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Version)
}

func TestSnapshotRejectsInvalidStoredTable(t *testing.T) {
	broken := DefaultTable()
	broken.Usage[pricing.DimUsers][pricing.TierProfessional] = nil
	loader := &stubLoader{latest: broken}
	svc := &Service{Store: loader, Cache: newTestCache(t), Logger: zerolog.Nop()}

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
}

func TestSnapshotPropagatesStoreError(t *testing.T) {
	loader := &stubLoader{}
	svc := &Service{Store: loader, Cache: newTestCache(t), Logger: zerolog.Nop()}

	_, err := svc.Snapshot(context.Background())
	require.True(t, errors.Is(err, ErrNoSnapshot))
}
