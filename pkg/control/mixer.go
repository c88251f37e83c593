package control

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// mixMatrix maps the four motor thrusts (FL, FR, RL, RR) to collective
// thrust and the roll, pitch and yaw force terms of the X layout.
var mixMatrix = mat.NewDense(4, 4, []float64{
	1, 1, 1, 1, // collective
	1, -1, 1, -1, // roll: left minus right
	1, 1, -1, -1, // pitch: front minus rear
	-1, 1, 1, -1, // yaw: rotor drag
})

var unmixMatrix = mustInverse(mixMatrix)

func mustInverse(a mat.Matrix) *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		panic(fmt.Sprintf("control: mixing matrix is not invertible: %v", err))
	}
	return &inv
}

// mixer holds the per-vehicle scaling of the mixing system and scratch
// vectors reused across ticks.
type mixer struct {
	l         float64 // arm length projected on the body axes
	kappa     float64
	minThrust float64
	maxThrust float64

	in, out *mat.VecDense
}

func newMixer(p Params) *mixer {
	return &mixer{
		l:         p.L / math.Sqrt2,
		kappa:     p.Kappa,
		minThrust: p.MinMotorThrust,
		maxThrust: p.MaxMotorThrust,
		in:        mat.NewVecDense(4, nil),
		out:       mat.NewVecDense(4, nil),
	}
}

// GenerateMotorCommands converts a collective thrust [N] and a body moment
// [N m] into per-motor thrusts. Every motor is clamped to the configured
// thrust range on its own; the resulting loss of moment or thrust balance is
// not compensated.
func (q *QuadControl) GenerateMotorCommands(collThrust float64, moment Vec3) MotorCommand {
	m := q.mix
	m.in.SetVec(0, collThrust)
	m.in.SetVec(1, moment.X/m.l)
	m.in.SetVec(2, moment.Y/m.l)
	m.in.SetVec(3, moment.Z/m.kappa)
	m.out.MulVec(unmixMatrix, m.in)

	var cmd MotorCommand
	for i := range cmd {
		cmd[i] = constrain(m.out.AtVec(i), m.minThrust, m.maxThrust)
	}
	return cmd
}
