package control

import (
	"go.einride.tech/pid"

	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// QuadControl is the cascaded position/attitude controller for one vehicle.
//
// A QuadControl is driven by a single scheduler: UpdateEstimates and
// RunControl must not be called concurrently.
type QuadControl struct {
	name   string
	params Params
	traj   TrajectorySource
	logger customlog.Logger
	mix    *mixer

	// altitude holds the integral of the vertical velocity error. It is
	// touched only by AltitudeControl.
	altitude pid.Controller

	est  EstimatedState
	tick uint64
	last TickSnapshot
}

// New loads the parameters for the named controller from src and returns a
// controller with a zeroed altitude integral.
func New(name string, src ParamSource, traj TrajectorySource, logger customlog.Logger) *QuadControl {
	if logger == nil {
		logger, _ = customlog.NewLogrusLogger("info", "")
		logger.Warnf("No logger provided to QuadControl %s, using default.", name)
	}

	p := src.Load(name)
	q := &QuadControl{
		name:   name,
		params: p,
		traj:   traj,
		logger: logger,
		mix:    newMixer(p),
		est:    EstimatedState{Attitude: IdentityQuaternion()},
	}
	q.altitude.Config = pid.ControllerConfig{
		ProportionalGain: p.KpVelZ,
		IntegralGain:     p.KiPosZ,
	}

	logger.WithFields(map[string]interface{}{
		"mass":       p.Mass,
		"kp_pos_z":   p.KpPosZ,
		"ki_pos_z":   p.KiPosZ,
		"kp_vel_z":   p.KpVelZ,
		"kp_bank":    p.KpBank,
		"min_thrust": p.MinMotorThrust,
		"max_thrust": p.MaxMotorThrust,
	}).Infof("QuadControl %s initialized", name)
	return q
}

// Name returns the controller name the parameters were loaded under.
func (q *QuadControl) Name() string { return q.name }

// Params returns a copy of the loaded parameters.
func (q *QuadControl) Params() Params { return q.params }

// UpdateEstimates replaces the estimated state used by the next tick.
func (q *QuadControl) UpdateEstimates(st EstimatedState) { q.est = st }

// IntegratedAltitudeError returns the current altitude integral.
func (q *QuadControl) IntegratedAltitudeError() float64 {
	return q.altitude.State.ControlErrorIntegral
}

// LastTick returns the intermediate commands of the most recent tick.
func (q *QuadControl) LastTick() TickSnapshot { return q.last }

// RunControl executes one control tick. dt is the time since the previous
// tick and simTime the current time, both in seconds.
func (q *QuadControl) RunControl(dt, simTime float64) MotorCommand {
	p := q.params
	pt := q.traj.NextPoint(simTime)
	est := q.est

	collThrust := q.AltitudeControl(pt.Position.Z, pt.Velocity.Z, est.Position.Z, est.Velocity.Z, est.Attitude, pt.Accel.Z, dt)

	lo, hi := p.CollectiveThrustBounds()
	collThrust = constrain(collThrust, lo, hi)

	desAcc := q.LateralPositionControl(pt.Position, pt.Velocity, est.Position, est.Velocity, pt.Accel)

	desOmega := q.RollPitchControl(desAcc, est.Attitude, collThrust)
	desOmega.Z = q.YawControl(pt.Attitude.Yaw(), est.Attitude.Yaw())

	desMoment := q.BodyRateControl(desOmega, est.Omega)

	cmd := q.GenerateMotorCommands(collThrust, desMoment)

	q.tick++
	q.last = TickSnapshot{
		Tick:                    q.tick,
		SimTime:                 simTime,
		Dt:                      dt,
		Target:                  pt,
		Estimate:                est,
		CollectiveThrust:        collThrust,
		DesiredAccel:            desAcc,
		DesiredOmega:            desOmega,
		DesiredMoment:           desMoment,
		Motors:                  cmd,
		IntegratedAltitudeError: q.IntegratedAltitudeError(),
	}
	q.logger.Debugf("%s tick %d t=%.3f thrust=%.3f motors=[%.3f %.3f %.3f %.3f]",
		q.name, q.tick, simTime, collThrust, cmd[0], cmd[1], cmd[2], cmd[3])
	return cmd
}
