package control

import "math"

// Quaternion is a unit quaternion describing the rotation of the body frame
// with respect to the world (inertial) frame.
type Quaternion struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IdentityQuaternion is the level, north-facing attitude.
func IdentityQuaternion() Quaternion { return Quaternion{W: 1} }

// FromEulerRPY builds an attitude from roll, pitch and yaw (radians) applied
// in yaw-pitch-roll order (Z, then Y, then X).
func FromEulerRPY(roll, pitch, yaw float64) Quaternion {
	cr, sr := math.Cos(roll*0.5), math.Sin(roll*0.5)
	cp, sp := math.Cos(pitch*0.5), math.Sin(pitch*0.5)
	cy, sy := math.Cos(yaw*0.5), math.Sin(yaw*0.5)

	return Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// Normalize returns q scaled to unit length. A zero quaternion maps to identity.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// RotationMatrix returns the matrix mapping body-frame vectors into the world frame.
func (q Quaternion) RotationMatrix() Mat3 {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

func (q Quaternion) Roll() float64 {
	return math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
}

func (q Quaternion) Pitch() float64 {
	s := 2 * (q.W*q.Y - q.Z*q.X)
	return math.Asin(constrain(s, -1, 1))
}

func (q Quaternion) Yaw() float64 {
	return math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
}

// IsFinite reports whether no component is NaN or infinite.
func (q Quaternion) IsFinite() bool {
	return isFinite(q.W) && isFinite(q.X) && isFinite(q.Y) && isFinite(q.Z)
}
