package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/quadcontrol/domain/vehicle"
	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

func quietLogger() customlog.Logger { return customlog.NewWriterLogger("error", io.Discard) }

type notification struct {
	topic, msgType string
	data           interface{}
}

type recordingNotifier struct {
	ch chan notification
}

func (n *recordingNotifier) PublishJSON(topic, msgType string, data interface{}) error {
	n.ch <- notification{topic, msgType, data}
	return nil
}

func TestParamsServiceUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "QuadControlParams.yaml")
	require.NoError(t, os.WriteFile(path, []byte("QuadControlParams:\n  Mass: 0.5\n"), 0644))

	svc, err := NewParamsService(path, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, svc.GetStore())
	assert.Equal(t, 0.5, svc.GetStore().Get("QuadControlParams.Mass", 0))

	notifier := &recordingNotifier{ch: make(chan notification, 1)}
	svc.SetNotifier(notifier)

	update := []byte("QuadControlParams:\n  Mass: 0.7\n  kpBank: 12\n")
	require.NoError(t, svc.UpdateParams(update))

	onDisk, err := svc.GetParamsYAML()
	require.NoError(t, err)
	assert.Equal(t, update, onDisk)
	assert.Equal(t, 0.7, svc.GetStore().Get("QuadControlParams.Mass", 0))

	select {
	case n := <-notifier.ch:
		assert.Equal(t, ParamsUpdatedTopic, n.topic)
		assert.Equal(t, MsgTypeParamsSaved, n.msgType)
	case <-time.After(time.Second):
		t.Fatal("no update notification")
	}

	// the temporary file is gone
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestParamsServiceRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "QuadControlParams.yaml")
	original := []byte("QuadControlParams:\n  Mass: 0.5\n")
	require.NoError(t, os.WriteFile(path, original, 0644))
	svc, err := NewParamsService(path, quietLogger())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.UpdateParams([]byte("QuadControlParams:\n  Mass: heavy\n")), ErrInvalidParams)
	assert.Error(t, svc.UpdateParams([]byte("{}")))
	assert.Error(t, svc.UpdateParams([]byte(":::")))

	onDisk, err := svc.GetParamsYAML()
	require.NoError(t, err)
	assert.Equal(t, original, onDisk)
}

func TestParamsServiceMissingFile(t *testing.T) {
	_, err := NewParamsService("", quietLogger())
	assert.Error(t, err)

	svc, err := NewParamsService(filepath.Join(t.TempDir(), "missing.yaml"), quietLogger())
	require.NoError(t, err)
	assert.Nil(t, svc.GetStore())
	_, err = svc.GetParamsYAML()
	assert.Error(t, err)
}

type fakeController struct {
	mu    sync.Mutex
	est   []control.EstimatedState
	dts   []float64
	times []float64
	tick  uint64
}

func (c *fakeController) UpdateEstimates(st control.EstimatedState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.est = append(c.est, st)
}

func (c *fakeController) RunControl(dt, simTime float64) control.MotorCommand {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dts = append(c.dts, dt)
	c.times = append(c.times, simTime)
	c.tick++
	return control.MotorCommand{1, 1, 1, 1}
}

func (c *fakeController) LastTick() control.TickSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return control.TickSnapshot{Tick: c.tick, Motors: control.MotorCommand{1, 1, 1, 1}}
}

type recordingSink struct {
	mu    sync.Mutex
	ticks []uint64
}

func (s *recordingSink) Submit(snap control.TickSnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticks = append(s.ticks, snap.Tick)
	return true
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ticks)
}

func TestControlLoopStep(t *testing.T) {
	ctrl := &fakeController{}
	states := vehicle.NewStateBuffer()
	sink := &recordingSink{}
	loop := NewControlLoop(ctrl, states, 100, quietLogger(), sink)
	assert.Equal(t, 10*time.Millisecond, loop.Period())

	t0 := time.Unix(1000, 0)
	loop.Step(t0) // no estimate yet
	states.Update(control.EstimatedState{Position: control.Vec3{Z: -1}})
	loop.Step(t0.Add(12 * time.Millisecond))
	cmd := loop.Step(t0.Add(20 * time.Millisecond))

	assert.Equal(t, control.MotorCommand{1, 1, 1, 1}, cmd)
	require.Len(t, ctrl.dts, 3)
	assert.InDelta(t, 0.010, ctrl.dts[0], 1e-12)
	assert.InDelta(t, 0.012, ctrl.dts[1], 1e-12)
	assert.InDelta(t, 0.008, ctrl.dts[2], 1e-12)
	assert.InDelta(t, 0.020, ctrl.times[2], 1e-12)
	assert.Len(t, ctrl.est, 2)
	assert.Equal(t, []uint64{1, 2, 3}, sink.ticks)
}

func TestControlLoopRunWaitsForState(t *testing.T) {
	ctrl := &fakeController{}
	states := vehicle.NewStateBuffer()
	sink := &recordingSink{}
	loop := NewControlLoop(ctrl, states, 1000, quietLogger(), sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, sink.count(), "ticked before the first estimate")

	states.Update(control.EstimatedState{Attitude: control.IdentityQuaternion()})
	require.Eventually(t, func() bool { return sink.count() >= 5 }, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestControlLoopRunCancelledBeforeState(t *testing.T) {
	loop := NewControlLoop(&fakeController{}, vehicle.NewStateBuffer(), 100, quietLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, loop.Run(ctx), context.Canceled)
}
