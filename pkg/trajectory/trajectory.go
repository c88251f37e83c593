// Package trajectory provides a file-backed reference trajectory.
//
// A trajectory file is CSV, one point per row:
//
//	t, x, y, z [, vx, vy, vz [, ax, ay, az [, yaw]]]
//
// Lines starting with '#' are ignored. Times must not decrease.
package trajectory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/open-teleop/quadcontrol/pkg/control"
)

// ErrEmpty is returned for a trajectory file without points.
var ErrEmpty = errors.New("trajectory has no points")

// Trajectory is an immutable, time-ordered list of points. It is safe for
// concurrent use.
type Trajectory struct {
	points []control.TrajectoryPoint
}

var _ control.TrajectorySource = (*Trajectory)(nil)

// Load reads the trajectory file at path.
func Load(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening trajectory file '%s': %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing trajectory file '%s': %w", path, err)
	}
	return t, nil
}

// Parse reads trajectory rows from r.
func Parse(r io.Reader) (*Trajectory, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var points []control.TrajectoryPoint
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)

		pt, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if n := len(points); n > 0 && pt.Time < points[n-1].Time {
			return nil, fmt.Errorf("line %d: time %v before previous point at %v", line, pt.Time, points[n-1].Time)
		}
		points = append(points, pt)
	}

	if len(points) == 0 {
		return nil, ErrEmpty
	}
	return &Trajectory{points: points}, nil
}

func parseRow(rec []string) (control.TrajectoryPoint, error) {
	switch len(rec) {
	case 4, 7, 10, 11:
	default:
		return control.TrajectoryPoint{}, fmt.Errorf("expected 4, 7, 10 or 11 fields, got %d", len(rec))
	}

	v := make([]float64, len(rec))
	for i, s := range rec {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return control.TrajectoryPoint{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v[i] = f
	}

	pt := control.TrajectoryPoint{
		Time:     v[0],
		Position: control.Vec3{X: v[1], Y: v[2], Z: v[3]},
		Attitude: control.IdentityQuaternion(),
	}
	if len(v) >= 7 {
		pt.Velocity = control.Vec3{X: v[4], Y: v[5], Z: v[6]}
	}
	if len(v) >= 10 {
		pt.Accel = control.Vec3{X: v[7], Y: v[8], Z: v[9]}
	}
	if len(v) == 11 {
		pt.Attitude = control.FromEulerRPY(0, 0, v[10])
	}
	return pt, nil
}

// Len returns the number of points.
func (t *Trajectory) Len() int { return len(t.points) }

// Duration returns the time of the last point.
func (t *Trajectory) Duration() float64 { return t.points[len(t.points)-1].Time }

// NextPoint returns the latest point whose time is not after simTime. Before
// the first point it returns the first point, after the last the last.
func (t *Trajectory) NextPoint(simTime float64) control.TrajectoryPoint {
	i := sort.Search(len(t.points), func(i int) bool { return t.points[i].Time > simTime })
	if i == 0 {
		return t.points[0]
	}
	return t.points[i-1]
}
