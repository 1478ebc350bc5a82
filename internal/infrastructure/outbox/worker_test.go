package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/jitter"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memOutbox struct {
	mu     sync.Mutex
	events []*usecase.OutboxEvent
	nextID int64
}

func (m *memOutbox) add(aggregateID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	ev := usecase.NewOutboxEvent("evt", usecase.OrderPosted, aggregateID, []byte(`{}`))
	ev.ID = m.nextID
	m.events = append(m.events, ev)
}

func (m *memOutbox) Create(_ context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return event, nil
}

func (m *memOutbox) GetAndMarkAsProcessing(_ context.Context, limit int, _ time.Duration) ([]*usecase.OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*usecase.OutboxEvent
	for _, ev := range m.events {
		if len(out) == limit {
			break
		}
		if ev.Status == usecase.Pending {
			ev.Status = usecase.Processing
			cp := *ev
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memOutbox) MarkAsProcessed(_ context.Context, id int64) error {
	return m.set(id, func(ev *usecase.OutboxEvent) { ev.Status = usecase.Processed })
}

func (m *memOutbox) MarkAsFailed(_ context.Context, id int64, reason string) error {
	return m.set(id, func(ev *usecase.OutboxEvent) {
		ev.Status = usecase.Pending
		ev.Attempts++
		ev.LastError = &reason
	})
}

func (m *memOutbox) set(id int64, f func(*usecase.OutboxEvent)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range m.events {
		if ev.ID == id {
			f(ev)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *memOutbox) snapshot(id int64) usecase.OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.events[id-1]
}

func (m *memOutbox) processed() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, ev := range m.events {
		if ev.Status == usecase.Processed {
			n++
		}
	}
	return n
}

type fakeSink struct {
	mu        sync.Mutex
	name      string
	failing   bool
	published []int64
}

func (s *fakeSink) Name() string { return s.name }

func (s *fakeSink) Publish(_ context.Context, event *usecase.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failing {
		return errors.New("dial tcp: connection refused")
	}
	s.published = append(s.published, event.AggregateID)
	return nil
}

func (s *fakeSink) setFailing(v bool) {
	s.mu.Lock()
	s.failing = v
	s.mu.Unlock()
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type fakeListener struct {
	connectFails atomic.Int32
	connects     atomic.Int32
	notify       chan struct{}
}

func (l *fakeListener) Connect(context.Context) error {
	if l.connectFails.Load() > 0 {
		l.connectFails.Add(-1)
		return errors.New("connection refused")
	}
	l.connects.Add(1)
	return nil
}

func (l *fakeListener) WaitForNotification(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.notify:
		return nil
	}
}

func (l *fakeListener) Close(context.Context) {}

func startWorker(t *testing.T, repo *memOutbox, listener Listener, poll time.Duration, sinks ...usecase.EventSink) *Worker {
	t.Helper()

	w := NewWorker(repo, sinks, listener, &cfg.OutboxCfg{PollInterval: poll, Lease: time.Minute, BatchSize: 2}, logger.NewNopLogger())
	w.backoff = jitter.Backoff{Base: time.Millisecond, Max: 5 * time.Millisecond}
	w.Start(context.Background())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, w.Stop(ctx))
	})
	return w
}

func TestWorker_DrainsOnStart(t *testing.T) {
	repo := &memOutbox{}
	for i := int64(1); i <= 5; i++ {
		repo.add(i)
	}
	kafka := &fakeSink{name: "kafka"}
	archive := &fakeSink{name: "minio"}

	startWorker(t, repo, nil, time.Hour, kafka, archive)

	assert.Eventually(t, func() bool { return repo.processed() == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, kafka.count())
	assert.Equal(t, 5, archive.count())
}

func TestWorker_FailedSinkKeepsEventPending(t *testing.T) {
	repo := &memOutbox{}
	repo.add(1)
	ok := &fakeSink{name: "minio"}
	broken := &fakeSink{name: "kafka", failing: true}

	startWorker(t, repo, nil, 10*time.Millisecond, ok, broken)

	assert.Eventually(t, func() bool { return repo.snapshot(1).Attempts >= 2 }, time.Second, 5*time.Millisecond)
	ev := repo.snapshot(1)
	assert.NotEqual(t, usecase.Processed, ev.Status)
	require.NotNil(t, ev.LastError)
	assert.Contains(t, *ev.LastError, "kafka: dial tcp: connection refused")

	broken.setFailing(false)
	assert.Eventually(t, func() bool { return repo.processed() == 1 }, time.Second, 5*time.Millisecond)
}

func TestWorker_WakesOnNotification(t *testing.T) {
	repo := &memOutbox{}
	sink := &fakeSink{name: "kafka"}
	listener := &fakeListener{notify: make(chan struct{})}
	listener.connectFails.Store(2)

	startWorker(t, repo, listener, time.Hour, sink)

	// переподключение после двух неудачных попыток
	assert.Eventually(t, func() bool { return listener.connects.Load() == 1 }, time.Second, time.Millisecond)

	repo.add(7)
	listener.notify <- struct{}{}

	assert.Eventually(t, func() bool { return repo.processed() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, sink.count())
}

func TestWorker_StopWithoutStart(t *testing.T) {
	w := NewWorker(&memOutbox{}, nil, nil, &cfg.OutboxCfg{PollInterval: time.Second, BatchSize: 1}, logger.NewNopLogger())
	assert.NoError(t, w.Stop(context.Background()))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("dial tcp 10.0.0.1:9092: i/o timeout")))
	assert.True(t, isRetryableError(context.DeadlineExceeded))
	assert.False(t, isRetryableError(errors.New("invalid character '{'")))
	assert.False(t, isRetryableError(nil))
}
