package control

import (
	"time"

	"go.einride.tech/pid"
)

// AltitudeControl returns the collective thrust [N] that tracks the vertical
// position and velocity setpoints (NED, down positive) with a feed-forward
// vertical acceleration. dt is the time since the last call in seconds.
//
// The result is not clamped. The thrust is divided by the R33 element of the
// attitude rotation, so it grows without bound as tilt approaches 90 degrees.
func (q *QuadControl) AltitudeControl(posZCmd, velZCmd, posZ, velZ float64, attitude Quaternion, accelZCmd, dt float64) float64 {
	p := q.params
	R := attitude.RotationMatrix()

	velZCmd += p.KpPosZ * (posZCmd - posZ)
	velZCmd = constrain(velZCmd, -p.MaxAscentRate, p.MaxDescentRate)

	q.altitude.Update(pid.ControllerInput{
		ReferenceSignal:  velZCmd,
		ActualSignal:     velZ,
		SamplingInterval: seconds(dt),
	})
	st := &q.altitude.State
	if lim := p.MaxIntegratedAltitudeError; lim > 0 {
		st.ControlErrorIntegral = constrain(st.ControlErrorIntegral, -lim, lim)
	}

	accelZCmd += p.KiPosZ*st.ControlErrorIntegral + p.KpVelZ*st.ControlError

	return p.Mass * (Gravity - accelZCmd) / R.At(2, 2)
}

func seconds(dt float64) time.Duration {
	return time.Duration(dt * float64(time.Second))
}
