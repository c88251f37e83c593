package processing

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

func quietLogger() customlog.Logger { return customlog.NewWriterLogger("error", io.Discard) }

func TestOutputPoolProcessesInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []uint64
	pool := NewOutputPool("command", 1, 16, func(snap control.TickSnapshot) error {
		mu.Lock()
		seen = append(seen, snap.Tick)
		mu.Unlock()
		return nil
	}, quietLogger())

	pool.Start()
	for i := uint64(1); i <= 10; i++ {
		require.True(t, pool.Submit(control.TickSnapshot{Tick: i}))
	}
	pool.Stop()

	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, seen)
	m := pool.GetMetrics()
	assert.Equal(t, int64(10), m.QueuedCount)
	assert.Equal(t, int64(10), m.ProcessedCount)
	assert.Equal(t, int64(0), m.DroppedCount)
}

func TestOutputPoolDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	pool := NewOutputPool("telemetry", 1, 2, func(snap control.TickSnapshot) error {
		started <- struct{}{}
		<-release
		return nil
	}, quietLogger())
	pool.Start()

	// The worker takes tick 1 and blocks, ticks 2 and 3 fill the queue.
	require.True(t, pool.Submit(control.TickSnapshot{Tick: 1}))
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker did not pick up the first tick")
	}
	require.True(t, pool.Submit(control.TickSnapshot{Tick: 2}))
	require.True(t, pool.Submit(control.TickSnapshot{Tick: 3}))

	done := make(chan bool)
	go func() { done <- pool.Submit(control.TickSnapshot{Tick: 4}) }()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	go func() {
		for range started {
		}
	}()
	close(release)
	pool.Stop()
	close(started)

	m := pool.GetMetrics()
	assert.Equal(t, int64(1), m.DroppedCount)
	assert.Equal(t, int64(3), m.ProcessedCount)
}

func TestOutputPoolRejectsWhenStopped(t *testing.T) {
	pool := NewOutputPool("command", 1, 4, func(control.TickSnapshot) error { return nil }, quietLogger())

	assert.False(t, pool.Submit(control.TickSnapshot{}), "not started")
	pool.Start()
	pool.Stop()
	assert.False(t, pool.Submit(control.TickSnapshot{}), "stopped")
	pool.Stop() // idempotent
}

func TestOutputPoolReportsErrors(t *testing.T) {
	var logs bytes.Buffer
	boom := errors.New("socket gone")
	pool := NewOutputPool("command", 1, 4, func(snap control.TickSnapshot) error {
		if snap.Tick == 2 {
			return boom
		}
		return nil
	}, quietLogger())
	pool.SetResultHandler(NewLoggingResultHandler(customlog.NewWriterLogger("info", &logs), 0).CreateHandlerFunc())

	pool.Start()
	pool.Submit(control.TickSnapshot{Tick: 1})
	pool.Submit(control.TickSnapshot{Tick: 2})
	pool.Stop()

	assert.Equal(t, int64(1), pool.GetMetrics().ErrorCount)
	assert.Contains(t, logs.String(), "command pool failed on tick 2: socket gone")
	assert.Equal(t, "command", pool.GetName())
	assert.Equal(t, 4, pool.GetQueueCapacity())
	assert.Equal(t, 0, pool.GetQueueLength())
}
