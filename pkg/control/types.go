package control

// TrajectoryPoint is one commanded point of the reference trajectory, world frame.
type TrajectoryPoint struct {
	Time     float64    `json:"time"`
	Position Vec3       `json:"position"`
	Velocity Vec3       `json:"velocity"`
	Accel    Vec3       `json:"accel"`
	Attitude Quaternion `json:"attitude"`
}

// TrajectorySource returns the commanded point for a simulation time.
type TrajectorySource interface {
	NextPoint(simTime float64) TrajectoryPoint
}

// StaticTrajectory holds a single point forever.
type StaticTrajectory TrajectoryPoint

func (s StaticTrajectory) NextPoint(simTime float64) TrajectoryPoint {
	pt := TrajectoryPoint(s)
	pt.Time = simTime
	return pt
}

// EstimatedState is the vehicle state produced by the estimator.
type EstimatedState struct {
	Position Vec3       `json:"position"` // world NED [m]
	Velocity Vec3       `json:"velocity"` // world NED [m/s]
	Attitude Quaternion `json:"attitude"`
	Omega    Vec3       `json:"omega"` // body rates p, q, r [rad/s]
}

// MotorCommand holds per-motor thrusts [N] ordered front-left, front-right,
// rear-left, rear-right.
type MotorCommand [4]float64

const (
	MotorFrontLeft = iota
	MotorFrontRight
	MotorRearLeft
	MotorRearRight
)

// Total returns the summed thrust of all motors.
func (c MotorCommand) Total() float64 {
	return c[0] + c[1] + c[2] + c[3]
}

// TickSnapshot captures the intermediate commands of one control tick.
type TickSnapshot struct {
	Tick                    uint64          `json:"tick"`
	SimTime                 float64         `json:"sim_time"`
	Dt                      float64         `json:"dt"`
	Target                  TrajectoryPoint `json:"target"`
	Estimate                EstimatedState  `json:"estimate"`
	CollectiveThrust        float64         `json:"collective_thrust"`
	DesiredAccel            Vec3            `json:"desired_accel"`
	DesiredOmega            Vec3            `json:"desired_omega"`
	DesiredMoment           Vec3            `json:"desired_moment"`
	Motors                  MotorCommand    `json:"motors"`
	IntegratedAltitudeError float64         `json:"integrated_altitude_error"`
}
