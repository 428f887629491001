package quote

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quotelab/backend-quotes/internal/events"
	"github.com/quotelab/backend-quotes/internal/pricing"
	"github.com/quotelab/backend-quotes/internal/ratetable"
)

type stubSnapshots struct {
	table *pricing.Table
}

func (s stubSnapshots) Snapshot(context.Context) (*pricing.Table, error) {
	return s.table, nil
}

type memStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[uuid.UUID]Record)}
}

func (m *memStore) Insert(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = uuid.New()
	m.records[rec.ID] = rec
	return rec, nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memStore) Update(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return Record{}, ErrNotFound
	}
	m.records[rec.ID] = rec
	return rec, nil
}

type memEventStore struct {
	mu     sync.Mutex
	events []events.Event
}

func (m *memEventStore) InsertDomainEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	evt := events.Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload}
	m.events = append(m.events, evt)
	return evt, nil
}

func newService(t *testing.T) (*Service, *memStore, *memEventStore) {
	t.Helper()
	eventStore := &memEventStore{}
	store := newMemStore()
	svc := &Service{
		Snapshots: stubSnapshots{table: ratetable.DefaultTable()},
		Store:     store,
		Bus:       &events.Bus{Store: eventStore},
		Logger:    zerolog.Nop(),
	}
	return svc, store, eventStore
}

func managementScenario() pricing.Scenario {
	return pricing.Scenario{
		Selection: pricing.SelectManagement,
		Plans: map[pricing.Product]pricing.PlanTier{
			pricing.ProductManagement: pricing.TierProfessional,
		},
		Addons: map[pricing.AddonKey]bool{
			pricing.AddonSignatures: true,
			pricing.AddonBoletos:    true,
		},
		Frequency: pricing.FreqAnnual,
		Usage: pricing.UsageMetrics{
			Seats:                    10,
			MonthlyClosings:          40,
			ContractsUnderManagement: 120,
		},
	}
}

func TestPreviewBuildsBaselinePlusEligibleBundles(t *testing.T) {
	svc, _, _ := newService(t)

	proposal, err := svc.Preview(context.Background(), managementScenario())
	require.NoError(t, err)

	require.Equal(t, int64(1), proposal.RateTableVersion)
	require.Equal(t, pricing.BundleGestao, proposal.Recommended)
	// baseline + kombo_gestao + kombo_gestao_max
	require.Len(t, proposal.Columns, 3)
	require.Equal(t, pricing.ColumnBaseline, proposal.Columns[0].Kind)

	var sawRecommended bool
	for _, col := range proposal.Columns[1:] {
		require.Equal(t, pricing.ColumnBundle, col.Kind)
		if col.Bundle == pricing.BundleGestao {
			require.True(t, col.Recommended)
			sawRecommended = true
		}
	}
	require.True(t, sawRecommended, "recommended bundle column missing")
}

func TestCreatePersistsAndEmitsEvent(t *testing.T) {
	svc, store, eventStore := newService(t)

	rec, err := svc.Create(context.Background(), "", managementScenario())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, rec.ID)
	require.NotEmpty(t, rec.Reference)
	require.Len(t, rec.Columns, 3)

	stored, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Reference, stored.Reference)

	require.Len(t, eventStore.events, 1)
	require.Equal(t, events.TopicQuoteComputed, eventStore.events[0].Topic)
	require.Equal(t, rec.ID, eventStore.events[0].AggregateID)
}

func TestEditColumnAppendsCustom(t *testing.T) {
	svc, _, _ := newService(t)

	rec, err := svc.Create(context.Background(), "", managementScenario())
	require.NoError(t, err)

	monthly := pricing.FreqMonthly
	updated, err := svc.EditColumn(context.Background(), rec.ID, len(rec.Columns), ColumnEdit{
		Overrides: &pricing.Overrides{Frequency: &monthly},
	})
	require.NoError(t, err)
	require.Len(t, updated.Columns, 4)

	custom := updated.Columns[3]
	require.Equal(t, pricing.ColumnCustom, custom.Kind)
	require.Equal(t, 1, custom.CycleMonths)
	require.NotNil(t, custom.Overrides)
	require.Greater(t, custom.TotalMonthly, updated.Columns[0].TotalMonthly,
		"monthly cycle should price above the annual baseline")
}

func TestEditColumnIndexOutOfRange(t *testing.T) {
	svc, _, _ := newService(t)

	rec, err := svc.Create(context.Background(), "", managementScenario())
	require.NoError(t, err)

	_, err = svc.EditColumn(context.Background(), rec.ID, len(rec.Columns)+1, ColumnEdit{})
	require.ErrorIs(t, err, ErrColumnIndex)
}

func TestEditColumnPrepaidReachesAllColumns(t *testing.T) {
	svc, _, _ := newService(t)

	rec, err := svc.Create(context.Background(), "", managementScenario())
	require.NoError(t, err)
	for _, col := range rec.Columns {
		require.False(t, col.PrepaidSeats)
	}

	updated, err := svc.EditColumn(context.Background(), rec.ID, len(rec.Columns), ColumnEdit{
		Prepaid: &pricing.PrepaidFlags{Seats: true},
	})
	require.NoError(t, err)
	require.True(t, updated.Prepaid.Seats)

	// ten seats against seven included leaves excess on every column, so
	// every column converts
	for _, col := range updated.Columns {
		require.True(t, col.PrepaidSeats)
		require.Zero(t, col.PostPaid[pricing.DimUsers].Cost)
	}
}

func TestGetUnknownQuote(t *testing.T) {
	svc, _, _ := newService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
