package control

import "math"

// RollPitchControl converts a desired world-frame horizontal acceleration into
// desired roll and pitch body rates. The z component of the result is zero.
//
// The commanded tilt divides by collThrust/mass and the rate conversion by the
// R33 element of the attitude; neither denominator is guarded, so a zero
// thrust or a 90 degree tilt yields non-finite rates.
func (q *QuadControl) RollPitchControl(accelCmd Vec3, attitude Quaternion, collThrust float64) Vec3 {
	p := q.params
	R := attitude.RotationMatrix()

	c := collThrust / p.Mass
	tiltCmd := Vec3{X: accelCmd.X / -c, Y: accelCmd.Y / -c}
	tiltCmd = tiltCmd.ConstrainXY(-p.MaxTiltAngle, p.MaxTiltAngle)

	tilt := Vec3{X: R.At(0, 2), Y: R.At(1, 2)}
	tiltRate := tiltCmd.Sub(tilt).Mul(p.KpBank)

	r33 := R.At(2, 2)
	return Vec3{
		X: (R.At(1, 0)*tiltRate.X - R.At(0, 0)*tiltRate.Y) / r33,
		Y: (R.At(1, 1)*tiltRate.X - R.At(0, 1)*tiltRate.Y) / r33,
	}
}

// YawControl returns the yaw rate [rad/s] that turns yaw toward yawCmd along
// the shorter way round.
func (q *QuadControl) YawControl(yawCmd, yaw float64) float64 {
	return q.params.KpYaw * WrapAngle(yawCmd-yaw)
}

// WrapAngle maps an angle to (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a > math.Pi {
		a -= 2 * math.Pi
	} else if a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// BodyRateControl returns the moment [N m] that drives the body rates pqr
// toward pqrCmd.
func (q *QuadControl) BodyRateControl(pqrCmd, pqr Vec3) Vec3 {
	p := q.params
	return p.Inertia().MulElem(p.KpPQR).MulElem(pqrCmd.Sub(pqr))
}
