package trajectory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/quadcontrol/pkg/control"
)

const figure = `# t, x, y, z, vx, vy, vz, ax, ay, az, yaw
0, 0, 0, -1
0.5, 1, 0, -1, 2, 0, 0
1.0, 2, 1, -1.5, 0, 2, -1, 0, 0.5, 0
1.5, 2, 2, -2, 0, 0, 0, 0, 0, 0, 1.2
`

func TestParseAndLookup(t *testing.T) {
	tr, err := Parse(strings.NewReader(figure))
	require.NoError(t, err)
	require.Equal(t, 4, tr.Len())
	assert.Equal(t, 1.5, tr.Duration())

	// before the first point
	pt := tr.NextPoint(-3)
	assert.Equal(t, 0.0, pt.Time)
	assert.Equal(t, control.Vec3{Z: -1}, pt.Position)
	assert.Equal(t, control.IdentityQuaternion(), pt.Attitude)

	// holds the latest point at or before simTime
	assert.Equal(t, 0.0, tr.NextPoint(0.49).Time)
	pt = tr.NextPoint(0.5)
	assert.Equal(t, 0.5, pt.Time)
	assert.Equal(t, control.Vec3{X: 2}, pt.Velocity)
	assert.Equal(t, control.Vec3{}, pt.Accel)

	pt = tr.NextPoint(1.2)
	assert.Equal(t, control.Vec3{Y: 0.5}, pt.Accel)
	assert.Equal(t, control.Vec3{Y: 2, Z: -1}, pt.Velocity)

	// past the end
	pt = tr.NextPoint(100)
	assert.Equal(t, 1.5, pt.Time)
	assert.InDelta(t, 1.2, pt.Attitude.Yaw(), 1e-12)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"too few fields":  "0, 1, 2\n",
		"odd field count": "0, 1, 2, 3, 4\n",
		"not a number":    "0, 1, two, 3\n",
		"time goes back":  "1, 0, 0, 0\n0.5, 0, 0, 0\n",
		"only comments":   "# nothing here\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(input))
			assert.Error(t, err)
		})
	}

	_, err := Parse(strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrEmpty))

	_, err = Parse(strings.NewReader("0, 0, 0, 0\n1, 0, x, 0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hover.csv")
	require.NoError(t, os.WriteFile(path, []byte("0, 0, 0, -2\n"), 0644))

	tr, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, control.Vec3{Z: -2}, tr.NextPoint(10).Position)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
