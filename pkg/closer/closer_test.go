package closer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloser_LIFO(t *testing.T) {
	c := NewCloser(0)

	var order []string
	for _, name := range []string{"postgres", "redis", "http"} {
		c.Add(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, []string{"http", "redis", "postgres"}, order)
}

func TestCloser_CollectsErrors(t *testing.T) {
	c := NewCloser(0)
	c.Add("kafka", func(context.Context) error { return errors.New("broker gone") })
	c.AddSimple("pool", func() {})

	err := c.Close(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka: broker gone")
}

func TestCloser_CloseOnce(t *testing.T) {
	c := NewCloser(0)
	calls := 0
	c.AddSimple("pool", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	assert.Equal(t, 1, calls)
}

func TestCloser_ForcedAfterTimeout(t *testing.T) {
	c := NewCloser(100 * time.Millisecond)

	var (
		mu     sync.Mutex
		forced bool
	)
	c.Add("first", func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		forced = true
		return nil
	})
	c.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown interrupted")
	mu.Lock()
	assert.True(t, forced)
	mu.Unlock()
}
