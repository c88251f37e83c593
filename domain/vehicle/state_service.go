package vehicle

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/quadcontrol/pkg/control"
)

// StateBuffer holds the most recent estimated state. It is written by the
// state listener and read by the control loop.
type StateBuffer struct {
	mu      sync.RWMutex
	state   control.EstimatedState
	updated time.Time
	count   uint64
	ready   chan struct{}
}

// NewStateBuffer creates an empty buffer.
func NewStateBuffer() *StateBuffer {
	return &StateBuffer{
		state: control.EstimatedState{Attitude: control.IdentityQuaternion()},
		ready: make(chan struct{}),
	}
}

// Update replaces the stored state.
func (b *StateBuffer) Update(st control.EstimatedState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = st
	b.updated = time.Now()
	if b.count == 0 {
		close(b.ready)
	}
	b.count++
}

// Latest returns the stored state and whether any state has been received.
func (b *StateBuffer) Latest() (control.EstimatedState, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state, b.count > 0
}

// Age returns the time since the last update, or zero before the first.
func (b *StateBuffer) Age() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.count == 0 {
		return 0
	}
	return time.Since(b.updated)
}

// Ready is closed once the first state arrives.
func (b *StateBuffer) Ready() <-chan struct{} { return b.ready }

// StateService exposes the estimate over HTTP. Posting a state is meant for
// bench testing without an estimator.
type StateService struct {
	buffer *StateBuffer
}

// NewStateService creates a new state service instance
func NewStateService(buffer *StateBuffer) *StateService {
	return &StateService{buffer: buffer}
}

// GetStateHandler returns the latest estimate.
func (s *StateService) GetStateHandler(c *fiber.Ctx) error {
	st, ok := s.buffer.Latest()
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "no estimated state received yet",
		})
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"state":  st,
		"age_ms": s.buffer.Age().Milliseconds(),
	})
}

// PostStateHandler accepts an estimate in the request body.
func (s *StateService) PostStateHandler(c *fiber.Ctx) error {
	st := control.EstimatedState{Attitude: control.IdentityQuaternion()}
	if err := c.BodyParser(&st); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if !st.Position.IsFinite() || !st.Velocity.IsFinite() || !st.Omega.IsFinite() || !st.Attitude.IsFinite() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "estimated state must be finite",
		})
	}
	st.Attitude = st.Attitude.Normalize()

	s.buffer.Update(st)
	return c.JSON(fiber.Map{
		"status": "state received",
		"state":  st,
	})
}
