package control

// Gravity is the gravitational acceleration used by the altitude loop [m/s^2].
const Gravity = 9.81

// Params is the gain, limit and vehicle constant bundle. It is loaded once when
// the controller is built and never changes afterwards.
type Params struct {
	// Vehicle
	Mass  float64 `json:"mass"`       // kg
	L     float64 `json:"arm_length"` // m, motor to center
	Ixx   float64 `json:"ixx"`        // kg m^2
	Iyy   float64 `json:"iyy"`
	Izz   float64 `json:"izz"`
	Kappa float64 `json:"kappa"` // thrust to yaw torque ratio

	// Position and velocity gains
	KpPosXY float64 `json:"kp_pos_xy"`
	KpPosZ  float64 `json:"kp_pos_z"`
	KiPosZ  float64 `json:"ki_pos_z"`
	KpVelXY float64 `json:"kp_vel_xy"`
	KpVelZ  float64 `json:"kp_vel_z"`

	// Angle and rate gains
	KpBank float64 `json:"kp_bank"`
	KpYaw  float64 `json:"kp_yaw"`
	KpPQR  Vec3    `json:"kp_pqr"`

	// Limits
	MaxAscentRate  float64 `json:"max_ascent_rate"`
	MaxDescentRate float64 `json:"max_descent_rate"`
	MaxSpeedXY     float64 `json:"max_speed_xy"`
	MaxAccelXY     float64 `json:"max_accel_xy"`
	MaxTiltAngle   float64 `json:"max_tilt_angle"`
	MinMotorThrust float64 `json:"min_motor_thrust"`
	MaxMotorThrust float64 `json:"max_motor_thrust"`

	// MaxIntegratedAltitudeError bounds the altitude integral to
	// [-max, max]. Zero leaves the integral unbounded.
	MaxIntegratedAltitudeError float64 `json:"max_integrated_altitude_error"`
}

// Inertia returns the per-axis moments of inertia.
func (p Params) Inertia() Vec3 { return Vec3{p.Ixx, p.Iyy, p.Izz} }

// ThrustMargin is the share of the per-motor thrust band kept free on each
// side of the collective thrust command for attitude corrections.
const ThrustMargin = 0.1

// CollectiveThrustBounds returns the range the collective thrust command is
// clamped to before attitude control runs.
func (p Params) CollectiveThrustBounds() (lo, hi float64) {
	margin := ThrustMargin * (p.MaxMotorThrust - p.MinMotorThrust)
	return (p.MinMotorThrust + margin) * 4, (p.MaxMotorThrust - margin) * 4
}

// ParamSource produces the parameter bundle for a named controller. Missing
// entries fall back to defaults; loading never fails.
type ParamSource interface {
	Load(name string) Params
}

// StaticParams is a ParamSource that always returns the same bundle.
type StaticParams Params

func (s StaticParams) Load(string) Params { return Params(s) }
