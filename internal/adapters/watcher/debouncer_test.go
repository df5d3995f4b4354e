package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/cplan/internal/adapters/watcher"
)

type collector struct {
	mu    sync.Mutex
	calls [][]string
}

func (c *collector) record(paths []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, paths)
}

func (c *collector) snapshot() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.calls...)
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.record)

		d.Add("/work/build.yaml")
		d.Add("/work/build.toml")
		d.Add("/work/build.toml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		calls := c.snapshot()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/work/build.toml", "/work/build.yaml"}, calls[0])
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.record)

		d.Add("/work/build.toml")
		time.Sleep(60 * time.Millisecond)
		d.Add("/work/build.toml")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, c.snapshot())

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, c.snapshot(), 1)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(100*time.Millisecond, c.record)

		d.Flush()
		assert.Empty(t, c.snapshot())

		d.Add("/work/build.toml")
		d.Flush()
		require.Len(t, c.snapshot(), 1)

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, c.snapshot(), 1)
	})
}

func TestDebouncer_FlushAfterFire(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(50*time.Millisecond, c.record)

		d.Add("/work/build.toml")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()

		d.Flush()
		assert.Len(t, c.snapshot(), 1)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)
		d.Add("/work/build.toml")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}

func TestDebouncer_FlushWaitsForRunningCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c collector
		d := watcher.NewDebouncer(50*time.Millisecond, func(paths []string) {
			time.Sleep(200 * time.Millisecond)
			c.record(paths)
		})

		d.Add("/work/build.toml")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, c.snapshot())

		d.Flush()
		assert.Len(t, c.snapshot(), 1)
	})
}

func TestDebouncer_CallbacksDoNotOverlap(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var (
			mu      sync.Mutex
			active  int
			maxSeen int
			c       collector
		)
		d := watcher.NewDebouncer(50*time.Millisecond, func(paths []string) {
			mu.Lock()
			active++
			maxSeen = max(maxSeen, active)
			mu.Unlock()

			time.Sleep(100 * time.Millisecond)
			c.record(paths)

			mu.Lock()
			active--
			mu.Unlock()
		})

		d.Add("/work/build.toml")
		time.Sleep(60 * time.Millisecond)
		d.Add("/work/build.yaml")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		d.Flush()
		require.Len(t, c.snapshot(), 2)
		assert.Equal(t, 1, maxSeen)
		assert.Equal(t, []string{"/work/build.yaml"}, c.snapshot()[1])
	})
}
