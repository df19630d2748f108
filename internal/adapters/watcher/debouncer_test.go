package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/pynix/internal/adapters/watcher"
)

// batchRecorder captures callback batches across goroutines.
type batchRecorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *batchRecorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *batchRecorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([][]string, len(r.calls))
	copy(out, r.calls)

	return out
}

func TestNewDebouncer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		window   time.Duration
		callback func([]string)
	}{
		{
			name:     "with callback and window",
			window:   50 * time.Millisecond,
			callback: func([]string) {},
		},
		{
			name:     "zero window falls back to default",
			window:   0,
			callback: func([]string) {},
		},
		{
			name:     "nil callback is allowed",
			window:   50 * time.Millisecond,
			callback: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := watcher.NewDebouncer(tt.window, tt.callback)
			require.NotNil(t, d)
		})
	}
}

func TestDebouncer_SinglePath(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/project/pynix.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		calls := rec.snapshot()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/project/pynix.yaml"}, calls[0])
	})
}

func TestDebouncer_CoalescesAndDeduplicates(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/project/pynix.yaml")
		d.Add("/project/other.yaml")
		d.Add("/project/pynix.yaml")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		calls := rec.snapshot()
		require.Len(t, calls, 1)
		assert.Len(t, calls[0], 2)
		assert.Contains(t, calls[0], "/project/pynix.yaml")
		assert.Contains(t, calls[0], "/project/other.yaml")
	})
}

func TestDebouncer_TimerResetsOnNewEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/project/pynix.yaml")
		time.Sleep(60 * time.Millisecond)

		// A second event inside the window pushes the deadline out.
		d.Add("/project/pynix.yaml")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, rec.snapshot())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()

		require.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_FlushFiresImmediately(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := watcher.NewDebouncer(time.Hour, rec.record)

		d.Add("/project/pynix.yaml")
		d.Flush()

		calls := rec.snapshot()
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"/project/pynix.yaml"}, calls[0])

		// The scheduled firing was cancelled, so nothing fires later.
		time.Sleep(2 * time.Hour)
		synctest.Wait()

		assert.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_FlushWithNothingPending(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Flush()

		assert.Empty(t, rec.snapshot())
	})
}

func TestDebouncer_AddAfterFlushStartsNewBatch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &batchRecorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/project/pynix.yaml")
		d.Flush()

		d.Add("/project/lock.json")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		calls := rec.snapshot()
		require.Len(t, calls, 2)
		assert.Equal(t, []string{"/project/pynix.yaml"}, calls[0])
		assert.Equal(t, []string{"/project/lock.json"}, calls[1])
	})
}

func TestDebouncer_NilCallbackDoesNotPanic(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(100*time.Millisecond, nil)

		d.Add("/project/pynix.yaml")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		d.Flush()
	})
}
