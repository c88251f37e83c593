package control

// LateralPositionControl returns the desired horizontal acceleration in the
// world frame. The z components of the inputs are ignored and the z component
// of the result is always zero.
func (q *QuadControl) LateralPositionControl(posCmd, velCmd, pos, vel, accelCmdFF Vec3) Vec3 {
	p := q.params

	accelCmdFF.Z = 0
	velCmd.Z = 0
	posCmd.Z = pos.Z

	velCmd = velCmd.Add(posCmd.Sub(pos).Mul(p.KpPosXY))
	velCmd = velCmd.ConstrainXY(-p.MaxSpeedXY, p.MaxSpeedXY)

	velErr := velCmd.Sub(vel)
	velErr.Z = 0

	accelCmd := accelCmdFF.Add(velErr.Mul(p.KpVelXY))
	accelCmd = accelCmd.ConstrainXY(-p.MaxAccelXY, p.MaxAccelXY)
	accelCmd.Z = 0
	return accelCmd
}
