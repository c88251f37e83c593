package control

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Vec3 is a three component vector. The reference frame (world NED or body)
// is fixed by the call site and not tracked in the type.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vec3) Add(o Vec3) Vec3         { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3         { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Mul(scalar float64) Vec3 { return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar} }

// MulElem returns the elementwise (Hadamard) product.
func (v Vec3) MulElem(o Vec3) Vec3 { return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Length() float64 { return math.Sqrt(v.Dot(v)) }

// ConstrainXY clamps the x and y components to [lo, hi] and leaves z alone.
func (v Vec3) ConstrainXY(lo, hi float64) Vec3 {
	return Vec3{constrain(v.X, lo, hi), constrain(v.Y, lo, hi), v.Z}
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

// Mat3 is a 3x3 matrix stored row-major.
type Mat3 [9]float64

// At returns the element at the zero-based row and column.
func (m Mat3) At(row, col int) float64 { return m[row*3+col] }

// MulVec returns m * v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// constrain keeps value inside [lo, hi].
func constrain[T constraints.Float](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
