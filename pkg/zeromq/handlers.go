package zeromq

import (
	"encoding/json"
	"fmt"

	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// StateSink accepts decoded estimates.
type StateSink interface {
	Update(st control.EstimatedState)
}

// StateHandler handles ESTIMATED_STATE messages
type StateHandler struct {
	sink   StateSink
	logger customlog.Logger
}

// NewStateHandler creates a handler that feeds sink.
func NewStateHandler(sink StateSink, logger customlog.Logger) *StateHandler {
	return &StateHandler{sink: sink, logger: logger}
}

// HandleMessage decodes the estimate, normalizes its attitude and passes it
// on. Estimates with non-finite components are rejected.
func (h *StateHandler) HandleMessage(msg ZeroMQMessage) error {
	if msg.Type != MsgTypeEstimatedState {
		return fmt.Errorf("unexpected message type: %s", msg.Type)
	}

	st := control.EstimatedState{Attitude: control.IdentityQuaternion()}
	if err := json.Unmarshal(msg.Data, &st); err != nil {
		return fmt.Errorf("%w: estimated state: %v", ErrInvalidMessage, err)
	}

	if !st.Position.IsFinite() || !st.Velocity.IsFinite() || !st.Omega.IsFinite() || !st.Attitude.IsFinite() {
		return fmt.Errorf("%w: non-finite estimated state", ErrInvalidMessage)
	}
	st.Attitude = st.Attitude.Normalize()

	h.sink.Update(st)
	h.logger.Debugf("Estimated state pos=(%.3f %.3f %.3f) yaw=%.3f",
		st.Position.X, st.Position.Y, st.Position.Z, st.Attitude.Yaw())
	return nil
}
