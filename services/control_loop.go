package services

import (
	"context"
	"time"

	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// Controller is the part of control.QuadControl the loop drives.
type Controller interface {
	UpdateEstimates(st control.EstimatedState)
	RunControl(dt, simTime float64) control.MotorCommand
	LastTick() control.TickSnapshot
}

// StateSource provides the latest estimate.
type StateSource interface {
	Latest() (control.EstimatedState, bool)
	Ready() <-chan struct{}
}

// TickSink receives the snapshot of every tick. Submit must not block.
type TickSink interface {
	Submit(snap control.TickSnapshot) bool
}

// ControlLoop ticks a controller at a fixed rate. It is the only caller of
// the controller once started.
type ControlLoop struct {
	ctrl   Controller
	states StateSource
	sinks  []TickSink
	period time.Duration
	logger customlog.Logger

	start time.Time
	last  time.Time
}

// NewControlLoop creates a loop running at rateHz.
func NewControlLoop(ctrl Controller, states StateSource, rateHz float64, logger customlog.Logger, sinks ...TickSink) *ControlLoop {
	return &ControlLoop{
		ctrl:   ctrl,
		states: states,
		sinks:  sinks,
		period: time.Duration(float64(time.Second) / rateHz),
		logger: logger,
	}
}

// Period returns the nominal tick period.
func (l *ControlLoop) Period() time.Duration { return l.period }

// Run waits for the first estimate, then ticks until ctx is done. Simulation
// time counts from the first tick.
func (l *ControlLoop) Run(ctx context.Context) error {
	l.logger.Infof("Control loop waiting for the first estimated state")
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.states.Ready():
	}

	l.logger.Infof("Control loop running at %v per tick", l.period)
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	l.Step(time.Now())
	for {
		select {
		case <-ctx.Done():
			l.logger.Infof("Control loop stopped after tick %d", l.ctrl.LastTick().Tick)
			return ctx.Err()
		case now := <-ticker.C:
			l.Step(now)
		}
	}
}

// Step runs one tick at wall time now and hands the snapshot to every sink.
// The first step uses the nominal period as dt.
func (l *ControlLoop) Step(now time.Time) control.MotorCommand {
	dt := l.period.Seconds()
	if l.start.IsZero() {
		l.start = now
	} else {
		dt = now.Sub(l.last).Seconds()
	}
	l.last = now
	simTime := now.Sub(l.start).Seconds()

	st, ok := l.states.Latest()
	if !ok {
		l.logger.Warnf("No estimated state at t=%.3f, holding the previous one", simTime)
	} else {
		l.ctrl.UpdateEstimates(st)
	}

	cmd := l.ctrl.RunControl(dt, simTime)
	snap := l.ctrl.LastTick()
	for _, sink := range l.sinks {
		sink.Submit(snap)
	}
	return cmd
}
