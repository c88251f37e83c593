// Package params loads controller gains, limits and vehicle constants from
// either the simulator parameter store or an autopilot parameter table.
package params

import "github.com/open-teleop/quadcontrol/pkg/control"

// field describes one scalar entry of control.Params: its key in the
// parameter store, the matching autopilot parameter, and the value used when
// neither holds it.
type field struct {
	key      string
	hardware string
	def      float64
	scale    float64 // hardware unit -> controller unit, 0 means 1
	set      func(p *control.Params, v float64)
}

// Gains default to zero and limits to 100, so a missing limit never clips
// and a missing gain disables its loop.
var fields = []field{
	{"Mass", "VEH_MASS", 1, 0, func(p *control.Params, v float64) { p.Mass = v }},
	{"L", "VEH_ARM_LEN", 0.1, 0, func(p *control.Params, v float64) { p.L = v }},
	{"Ixx", "VEH_IXX", 0.001, 0, func(p *control.Params, v float64) { p.Ixx = v }},
	{"Iyy", "VEH_IYY", 0.001, 0, func(p *control.Params, v float64) { p.Iyy = v }},
	{"Izz", "VEH_IZZ", 0.002, 0, func(p *control.Params, v float64) { p.Izz = v }},
	{"kappa", "VEH_KAPPA", 0.01, 0, func(p *control.Params, v float64) { p.Kappa = v }},

	{"kpPosXY", "MPC_XY_P", 0, 0, func(p *control.Params, v float64) { p.KpPosXY = v }},
	{"kpPosZ", "MPC_Z_P", 0, 0, func(p *control.Params, v float64) { p.KpPosZ = v }},
	{"KiPosZ", "MPC_Z_VEL_I", 0, 0, func(p *control.Params, v float64) { p.KiPosZ = v }},
	{"kpVelXY", "MPC_XY_VEL_P", 0, 0, func(p *control.Params, v float64) { p.KpVelXY = v }},
	{"kpVelZ", "MPC_Z_VEL_P", 0, 0, func(p *control.Params, v float64) { p.KpVelZ = v }},
	{"kpBank", "MC_ROLL_P", 0, 0, func(p *control.Params, v float64) { p.KpBank = v }},
	{"kpYaw", "MC_YAW_P", 0, 0, func(p *control.Params, v float64) { p.KpYaw = v }},

	{"maxAscentRate", "MPC_Z_VEL_MAX_UP", 100, 0, func(p *control.Params, v float64) { p.MaxAscentRate = v }},
	{"maxDescentRate", "MPC_Z_VEL_MAX_DN", 100, 0, func(p *control.Params, v float64) { p.MaxDescentRate = v }},
	{"maxSpeedXY", "MPC_XY_VEL_MAX", 100, 0, func(p *control.Params, v float64) { p.MaxSpeedXY = v }},
	{"maxHorizAccel", "MPC_ACC_HOR_MAX", 100, 0, func(p *control.Params, v float64) { p.MaxAccelXY = v }},
	{"maxTiltAngle", "MPC_TILTMAX_AIR", 100, degToRad, func(p *control.Params, v float64) { p.MaxTiltAngle = v }},
	{"minMotorThrust", "MOT_THRUST_MIN", 0, 0, func(p *control.Params, v float64) { p.MinMotorThrust = v }},
	{"maxMotorThrust", "MOT_THRUST_MAX", 100, 0, func(p *control.Params, v float64) { p.MaxMotorThrust = v }},

	{"maxIntegratedAltitudeError", "MPC_Z_VEL_I_LIM", 0, 0, func(p *control.Params, v float64) { p.MaxIntegratedAltitudeError = v }},
}

// rateGainKey is the store key of the three element body-rate gain; on the
// autopilot side it is split across rateGainHardware.
const rateGainKey = "kpPQR"

var rateGainHardware = [3]string{"MC_ROLLRATE_P", "MC_PITCHRATE_P", "MC_YAWRATE_P"}

const degToRad = 0.017453292519943295
