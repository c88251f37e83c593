package params

import (
	"strings"

	"github.com/open-teleop/quadcontrol/pkg/config"
	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// HardwareTable loads parameters from the autopilot's flat parameter table.
// The controller name is not part of the lookup: an autopilot carries one
// parameter set.
type HardwareTable struct {
	values map[string]float64
	logger customlog.Logger
}

var _ control.ParamSource = (*HardwareTable)(nil)

// NewHardwareTable wraps values, keyed by autopilot parameter name.
func NewHardwareTable(values map[string]float64, logger customlog.Logger) *HardwareTable {
	return &HardwareTable{values: values, logger: logger}
}

// DefaultHardwareTable returns the parameter set flashed on the reference
// airframe (0.5 kg X quad, 4.5 N motors).
func DefaultHardwareTable() map[string]float64 {
	return map[string]float64{
		"VEH_MASS":    0.5,
		"VEH_ARM_LEN": 0.17,
		"VEH_IXX":     0.0023,
		"VEH_IYY":     0.0023,
		"VEH_IZZ":     0.0046,
		"VEH_KAPPA":   0.016,

		"MPC_XY_P":     2,
		"MPC_Z_P":      2,
		"MPC_Z_VEL_I":  20,
		"MPC_XY_VEL_P": 8,
		"MPC_Z_VEL_P":  8,
		"MC_ROLL_P":    10,
		"MC_YAW_P":     2,

		"MC_ROLLRATE_P":  23,
		"MC_PITCHRATE_P": 23,
		"MC_YAWRATE_P":   5,

		"MPC_Z_VEL_MAX_UP": 5,
		"MPC_Z_VEL_MAX_DN": 2,
		"MPC_XY_VEL_MAX":   5,
		"MPC_ACC_HOR_MAX":  12,
		"MPC_TILTMAX_AIR":  40,
		"MOT_THRUST_MIN":   0.1,
		"MOT_THRUST_MAX":   4.5,
		"MPC_Z_VEL_I_LIM":  0,
	}
}

// OverlayHardwareValues returns a copy of base with every scalar entry of
// store applied on top. Names are matched upper-cased, as the autopilot
// stores them.
func OverlayHardwareValues(base map[string]float64, store *config.ParamStore) map[string]float64 {
	out := make(map[string]float64, len(base))
	for k, v := range base {
		out[k] = v
	}
	for _, k := range store.Keys() {
		if store.Has(k) {
			out[strings.ToUpper(k)] = store.Get(k, 0)
		}
	}
	return out
}

// Load maps the autopilot table onto the controller parameters. Angles are
// stored in degrees on the autopilot and converted to radians.
func (h *HardwareTable) Load(name string) control.Params {
	var p control.Params
	missing := 0

	for _, f := range fields {
		f.set(&p, h.lookup(f.hardware, f.def, f.scale, &missing))
	}
	p.KpPQR = control.Vec3{
		X: h.lookup(rateGainHardware[0], 0, 0, &missing),
		Y: h.lookup(rateGainHardware[1], 0, 0, &missing),
		Z: h.lookup(rateGainHardware[2], 0, 0, &missing),
	}

	h.logger.WithFields(map[string]interface{}{
		"entries": len(h.values),
		"missing": missing,
	}).Infof("Loaded %s from hardware parameter table", name)
	return p
}

func (h *HardwareTable) lookup(name string, def, scale float64, missing *int) float64 {
	v, ok := h.values[name]
	if !ok {
		*missing++
		h.logger.Warnf("Hardware param %s not set, using default %v", name, def)
		return def
	}
	if scale != 0 {
		v *= scale
	}
	return v
}
