package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	events []Event
	fail   error
}

func (m *memStore) InsertDomainEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Event, error) {
	if m.fail != nil {
		return Event{}, m.fail
	}
	ev := Event{ID: uuid.New(), Topic: topic, AggregateID: aggregateID, Payload: payload}
	m.events = append(m.events, ev)
	return ev, nil
}

type recordingNotifier struct {
	seen []Event
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, ev Event) error {
	n.seen = append(n.seen, ev)
	return n.err
}

func TestBusEmitPersistsAndFansOut(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notifier := &recordingNotifier{}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	id := uuid.New()
	ev, err := bus.Emit(context.Background(), TopicQuoteComputed, id, map[string]any{"columns": 3})
	require.NoError(t, err)
	require.Equal(t, TopicQuoteComputed, ev.Topic)
	require.Len(t, store.events, 1)
	require.Len(t, notifier.seen, 1)
	require.JSONEq(t, `{"columns":3}`, string(ev.Payload))
}

func TestBusEmitRejectsMissingFields(t *testing.T) {
	t.Parallel()
	bus := &Bus{Store: &memStore{}}

	_, err := bus.Emit(context.Background(), " ", uuid.New(), nil)
	require.Error(t, err)

	_, err = bus.Emit(context.Background(), TopicQuoteExported, uuid.Nil, nil)
	require.Error(t, err)
}

func TestBusEmitNotifierFailureKeepsEvent(t *testing.T) {
	t.Parallel()
	store := &memStore{}
	notifier := &recordingNotifier{err: errors.New("boom")}
	bus := &Bus{Store: store, Notifiers: []Notifier{notifier}}

	_, err := bus.Emit(context.Background(), TopicQuoteExported, uuid.New(), nil)
	require.Error(t, err)
	require.Len(t, store.events, 1)
}
