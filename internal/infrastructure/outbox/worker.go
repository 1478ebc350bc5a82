package outbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/jitter"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

// Worker пересылает события outbox во все sink'и.
// Будится уведомлением Listener'а и таймером; без Listener'а работает только по таймеру.
type Worker struct {
	repo     usecase.OutboxRepository
	sinks    []usecase.EventSink
	listener Listener
	cfg      *cfg.OutboxCfg
	logger   logger.Logger
	backoff  jitter.Backoff

	wake   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(
	repo usecase.OutboxRepository,
	sinks []usecase.EventSink,
	listener Listener,
	cfg *cfg.OutboxCfg,
	logger logger.Logger,
) *Worker {
	return &Worker{
		repo:     repo,
		sinks:    sinks,
		listener: listener,
		cfg:      cfg,
		logger:   logger,
		backoff:  jitter.Backoff{Base: time.Second, Max: 30 * time.Second, Jitter: jitter.DefaultJitter},
		wake:     make(chan struct{}, 1),
	}
}

// Start запускает обработку в фоне. Остановка: через Stop.
func (w *Worker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	if w.listener != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.listen(ctx)
		}()
	}
}

// Stop останавливает воркер и ждёт текущую пачку, но не дольше ctx.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("outbox worker stop: %w", ctx.Err())
	}
}

func (w *Worker) run(ctx context.Context) {
	w.logger.Infof("draining pending outbox events on startup: sinks=%s", w.sinkNames())
	w.drain(ctx)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("outbox worker stopped")
			return
		case <-ticker.C:
		case <-w.wake:
		}
		w.drain(ctx)
	}
}

func (w *Worker) listen(ctx context.Context) {
	for {
		if err := w.listener.Connect(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			delay := w.backoff.Next()
			w.logger.Warnf("outbox listener connect failed, retry in %v: %v", delay, err)
			if jitter.Sleep(ctx, delay) != nil {
				return
			}
			continue
		}

		w.backoff.Reset()
		w.logger.Infof("outbox listener subscribed")
		err := w.waitLoop(ctx)
		w.listener.Close(context.WithoutCancel(ctx))
		if ctx.Err() != nil {
			return
		}
		w.logger.Warnf("outbox listener connection lost, reconnecting: %v", err)
	}
}

func (w *Worker) waitLoop(ctx context.Context) error {
	for {
		if err := w.listener.WaitForNotification(ctx); err != nil {
			return err
		}

		select {
		case w.wake <- struct{}{}:
		default: // воркер уже разбужен
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет или пачка не завершится ошибкой.
func (w *Worker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			if ctx.Err() == nil {
				w.logger.Warnf("outbox batch failed: %v", err)
			}
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает true, если стоит сразу забрать следующую пачку.
func (w *Worker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.cfg.BatchSize, w.cfg.Lease)
	if err != nil {
		return false, err
	}

	failed := 0
	for _, event := range events {
		if err := w.publish(ctx, event); err != nil {
			failed++
			w.logPublishError(event, err)
			if err := w.repo.MarkAsFailed(ctx, event.ID, err.Error()); err != nil {
				w.logger.Warnf("mark failed: event_id=%s: %v", event.EventID, err)
			}
			continue
		}

		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: event_id=%s: %v", event.EventID, err)
		}
	}

	// упавшие события уже снова в pending: повторим их на следующем тике
	return len(events) == w.cfg.BatchSize && failed == 0, nil
}

func (w *Worker) publish(ctx context.Context, event *usecase.OutboxEvent) error {
	var errs []error
	for _, sink := range w.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}

	return errors.Join(errs...)
}

func (w *Worker) logPublishError(event *usecase.OutboxEvent, err error) {
	if isRetryableError(err) {
		w.logger.Warnf("temporary sink failure, will retry: event_id=%s attempts=%d: %v", event.EventID, event.Attempts, err)
		return
	}
	w.logger.Errorf(err, "sink failure: event_id=%s attempts=%d", event.EventID, event.Attempts)
}

func (w *Worker) sinkNames() string {
	names := make([]string, 0, len(w.sinks))
	for _, s := range w.sinks {
		names = append(names, s.Name())
	}
	return strings.Join(names, ",")
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"leader not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
