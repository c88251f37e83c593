// Package codec converts controller outputs to and from their wire format.
package codec

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/open-teleop/quadcontrol/pkg/control"
	message "github.com/open-teleop/quadcontrol/pkg/flatbuffers/quadcontrol/message"
)

// MotorCommandTopic is the ZeroMQ topic motor commands are published under.
const MotorCommandTopic = "quad.motor.command"

// ErrShortBuffer is returned when a buffer cannot hold a MotorCommand table.
var ErrShortBuffer = errors.New("buffer too short for MotorCommand")

// CommandFrame is one published motor command with its tick metadata.
type CommandFrame struct {
	Tick             uint64
	TimestampNs      int64
	SimTime          float64
	RunID            string
	Motors           control.MotorCommand
	CollectiveThrust float64
}

// EncodeMotorCommand serializes f as a MotorCommand FlatBuffer.
func EncodeMotorCommand(f CommandFrame) []byte {
	builder := flatbuffers.NewBuilder(128)

	runID := builder.CreateString(f.RunID)

	message.MotorCommandStartThrustsVector(builder, len(f.Motors))
	for i := len(f.Motors) - 1; i >= 0; i-- {
		builder.PrependFloat64(f.Motors[i])
	}
	thrusts := builder.EndVector(len(f.Motors))

	message.MotorCommandStart(builder)
	message.MotorCommandAddTick(builder, f.Tick)
	message.MotorCommandAddTimestampNs(builder, f.TimestampNs)
	message.MotorCommandAddSimTime(builder, f.SimTime)
	message.MotorCommandAddRunId(builder, runID)
	message.MotorCommandAddThrusts(builder, thrusts)
	message.MotorCommandAddCollectiveThrust(builder, f.CollectiveThrust)
	message.FinishMotorCommandBuffer(builder, message.MotorCommandEnd(builder))

	return builder.FinishedBytes()
}

// DecodeMotorCommand parses a MotorCommand FlatBuffer. A table with other
// than four thrusts is rejected.
func DecodeMotorCommand(buf []byte) (f CommandFrame, err error) {
	if len(buf) < 8 {
		return f, ErrShortBuffer
	}
	// The generated accessors index without bounds checks of their own.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed MotorCommand: %v", r)
		}
	}()

	msg := message.GetRootAsMotorCommand(buf, 0)
	if n := msg.ThrustsLength(); n != len(f.Motors) {
		return f, fmt.Errorf("MotorCommand carries %d thrusts, want %d", n, len(f.Motors))
	}

	f.Tick = msg.Tick()
	f.TimestampNs = msg.TimestampNs()
	f.SimTime = msg.SimTime()
	f.RunID = string(msg.RunId())
	for i := range f.Motors {
		f.Motors[i] = msg.Thrusts(i)
	}
	f.CollectiveThrust = msg.CollectiveThrust()
	return f, nil
}
