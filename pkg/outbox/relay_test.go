package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	pending []Event
	sent    []int64
	failed  map[int64]string
}

func newMemStore(events ...Event) *memStore {
	return &memStore{pending: events, failed: make(map[int64]string)}
}

func (s *memStore) LockBatch(_ context.Context, relayID string, batchSize int, _ time.Duration) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.pending)
	if n > batchSize {
		n = batchSize
	}
	batch := make([]Event, n)
	copy(batch, s.pending[:n])
	s.pending = s.pending[n:]
	for i := range batch {
		batch[i].RelayID = relayID
		batch[i].Status = StatusInProgress
	}
	return batch, nil
}

func (s *memStore) MarkSent(_ context.Context, ids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ids...)
	return nil
}

func (s *memStore) MarkFailed(_ context.Context, id int64, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = errMsg
	return nil
}

func (s *memStore) ExtendLease(context.Context, string, []int64, time.Duration) error {
	return nil
}

func (s *memStore) snapshot() (sent []int64, failed map[int64]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sent = append([]int64(nil), s.sent...)
	failed = make(map[int64]string, len(s.failed))
	for k, v := range s.failed {
		failed[k] = v
	}
	return sent, failed
}

type memProducer struct {
	mu       sync.Mutex
	messages []kafka.Message
	failKeys map[string]error
}

func (p *memProducer) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		if err, ok := p.failKeys[string(m.Key)]; ok {
			return err
		}
		p.messages = append(p.messages, m)
	}
	return nil
}

func (p *memProducer) snapshot() []kafka.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Message(nil), p.messages...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runRelay(t *testing.T, r *Relay, until func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()

	deadline := time.After(3 * time.Second)
	for !until() {
		select {
		case <-deadline:
			cancel()
			<-done
			t.Fatal("relay did not drain in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done
}

func TestRelayDispatchesPendingEvents(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		Event{ID: 1, AggregateID: "7", Type: "OrderCreated", Payload: []byte(`{"orderId":7}`), Traceparent: "00-abc-def-01"},
		Event{ID: 2, AggregateID: "7", Type: "OrderStatusChanged", Payload: []byte(`{}`)},
	)
	producer := &memProducer{}
	r := NewRelay(testLogger(), store, NewDispatcher(testLogger(), producer, "order.events"), "relay-test")
	r.interval = 5 * time.Millisecond

	runRelay(t, r, func() bool {
		sent, _ := store.snapshot()
		return len(sent) == 2
	})

	msgs := producer.snapshot()
	require.Len(t, msgs, 2)
	require.Equal(t, "order.events", msgs[0].Topic)
	require.Equal(t, []byte("7"), msgs[0].Key)

	headers := make(map[string]string)
	for _, h := range msgs[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, "OrderCreated", headers["event_type"])
	require.Equal(t, "00-abc-def-01", headers["traceparent"])

	sent, failed := store.snapshot()
	require.ElementsMatch(t, []int64{1, 2}, sent)
	require.Empty(t, failed)
}

func TestRelayMarksFailedEventsIndividually(t *testing.T) {
	t.Parallel()

	store := newMemStore(
		Event{ID: 1, AggregateID: "good", Type: "OrderCreated"},
		Event{ID: 2, AggregateID: "bad", Type: "OrderCreated"},
		Event{ID: 3, AggregateID: "good", Type: "OrderCanceled"},
	)
	producer := &memProducer{failKeys: map[string]error{"bad": errors.New("broker down")}}
	r := NewRelay(testLogger(), store, NewDispatcher(testLogger(), producer, "order.events"), "relay-test")
	r.interval = 5 * time.Millisecond

	runRelay(t, r, func() bool {
		sent, failed := store.snapshot()
		return len(sent) == 2 && len(failed) == 1
	})

	sent, failed := store.snapshot()
	require.ElementsMatch(t, []int64{1, 3}, sent)
	require.Contains(t, failed[2], "broker down")
	require.Len(t, producer.snapshot(), 2)
}

func TestRelayStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	r := NewRelay(testLogger(), store, NewDispatcher(testLogger(), &memProducer{}, "order.events"), "relay-test")
	r.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on cancel")
	}
}
