// Package jitter добавляет случайность в интервалы повторных попыток,
// чтобы реплики не переподключались к Postgres и брокеру синхронно.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter: стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	f := globalRand.Float64()
	randMutex.Unlock()
	return d + time.Duration(f*jitterFactor*float64(d))
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// attempt нумеруется с нуля; без джиттера результат не превышает maxDelay.
func ExponentialBackoff(base, maxDelay time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt && backoff < maxDelay; i++ {
		backoff *= 2
	}
	return Duration(min(backoff, maxDelay), jitterFactor)
}

// Backoff хранит счётчик попыток между вызовами.
type Backoff struct {
	Base   time.Duration
	Max    time.Duration
	Jitter float64

	attempt int
}

// Next возвращает задержку перед следующей попыткой и увеличивает счётчик.
func (b *Backoff) Next() time.Duration {
	d := ExponentialBackoff(b.Base, b.Max, b.attempt, b.Jitter)
	b.attempt++
	return d
}

// Reset сбрасывает счётчик после успешной попытки.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Sleep ждёт d или отмены контекста.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
