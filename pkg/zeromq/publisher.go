package zeromq

import (
	"time"

	"github.com/open-teleop/quadcontrol/pkg/codec"
	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// Publisher sends a payload under a topic.
type Publisher interface {
	PublishMessage(topic string, message []byte) error
}

// CommandPublisher publishes the motor command of every tick as a
// MotorCommand FlatBuffer.
type CommandPublisher struct {
	pub    Publisher
	runID  string
	logger customlog.Logger
	now    func() time.Time
}

// NewCommandPublisher creates a new publisher for motor commands. runID tags
// every command of this process.
func NewCommandPublisher(pub Publisher, runID string, logger customlog.Logger) *CommandPublisher {
	return &CommandPublisher{
		pub:    pub,
		runID:  runID,
		logger: logger,
		now:    time.Now,
	}
}

// PublishTick encodes and publishes the motors of one tick.
func (p *CommandPublisher) PublishTick(snap control.TickSnapshot) error {
	data := codec.EncodeMotorCommand(codec.CommandFrame{
		Tick:             snap.Tick,
		TimestampNs:      p.now().UnixNano(),
		SimTime:          snap.SimTime,
		RunID:            p.runID,
		Motors:           snap.Motors,
		CollectiveThrust: snap.CollectiveThrust,
	})

	if err := p.pub.PublishMessage(codec.MotorCommandTopic, data); err != nil {
		p.logger.Errorf("Failed to publish motor command for tick %d: %v", snap.Tick, err)
		return err
	}
	return nil
}
