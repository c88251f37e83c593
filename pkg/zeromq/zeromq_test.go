package zeromq

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-teleop/quadcontrol/pkg/codec"
	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

type recordingSink struct {
	states []control.EstimatedState
}

func (s *recordingSink) Update(st control.EstimatedState) { s.states = append(s.states, st) }

type recordingPublisher struct {
	topic string
	data  []byte
	err   error
}

func (p *recordingPublisher) PublishMessage(topic string, message []byte) error {
	p.topic, p.data = topic, message
	return p.err
}

func quietLogger() customlog.Logger { return customlog.NewWriterLogger("error", io.Discard) }

func TestDispatchEstimatedState(t *testing.T) {
	sink := &recordingSink{}
	d := NewMessageDispatcher(quietLogger())
	d.RegisterHandler(MsgTypeEstimatedState, NewStateHandler(sink, quietLogger()))

	raw := `{"type":"ESTIMATED_STATE","timestamp":12.5,"data":{
		"position":{"x":1,"y":2,"z":-3},
		"velocity":{"x":0.5,"y":0,"z":0},
		"attitude":{"w":2,"x":0,"y":0,"z":0},
		"omega":{"x":0,"y":0,"z":0.1}}}`

	require.NoError(t, d.Dispatch([]byte(raw)))
	require.Len(t, sink.states, 1)

	st := sink.states[0]
	assert.Equal(t, control.Vec3{X: 1, Y: 2, Z: -3}, st.Position)
	assert.Equal(t, 0.1, st.Omega.Z)
	// attitude is normalized on the way in
	assert.Equal(t, control.IdentityQuaternion(), st.Attitude)
}

func TestDispatchMissingAttitudeIsLevel(t *testing.T) {
	sink := &recordingSink{}
	d := NewMessageDispatcher(quietLogger())
	d.RegisterHandler(MsgTypeEstimatedState, NewStateHandler(sink, quietLogger()))

	require.NoError(t, d.Dispatch([]byte(`{"type":"ESTIMATED_STATE","data":{"position":{"z":-1}}}`)))
	assert.Equal(t, control.IdentityQuaternion(), sink.states[0].Attitude)
}

func TestDispatchErrors(t *testing.T) {
	sink := &recordingSink{}
	d := NewMessageDispatcher(quietLogger())
	d.RegisterHandler(MsgTypeEstimatedState, NewStateHandler(sink, quietLogger()))

	err := d.Dispatch([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	err = d.Dispatch([]byte(`{"type":"SOMETHING_ELSE"}`))
	assert.ErrorIs(t, err, ErrUnknownMessageType)

	err = d.Dispatch([]byte(`{"type":"ESTIMATED_STATE","data":{"position":"up"}}`))
	assert.ErrorIs(t, err, ErrInvalidMessage)

	assert.Empty(t, sink.states)
}

func TestRegisterHandlerFunc(t *testing.T) {
	d := NewMessageDispatcher(quietLogger())
	var got ZeroMQMessage
	d.RegisterHandler("PING", HandlerFunc(func(msg ZeroMQMessage) error {
		got = msg
		return errors.New("pong")
	}))

	err := d.Dispatch([]byte(`{"type":"PING","timestamp":1,"data":[1,2]}`))

	assert.EqualError(t, err, "pong")
	assert.Equal(t, "PING", got.Type)
	assert.JSONEq(t, "[1,2]", string(got.Data))
}

func TestCommandPublisherEncodesTick(t *testing.T) {
	rec := &recordingPublisher{}
	p := NewCommandPublisher(rec, "run-1", quietLogger())
	p.now = func() time.Time { return time.Unix(0, 12345) }

	snap := control.TickSnapshot{
		Tick:             7,
		SimTime:          0.07,
		CollectiveThrust: 4.9,
		Motors:           control.MotorCommand{1.2, 1.2, 1.25, 1.25},
	}
	require.NoError(t, p.PublishTick(snap))

	assert.Equal(t, codec.MotorCommandTopic, rec.topic)
	frame, err := codec.DecodeMotorCommand(rec.data)
	require.NoError(t, err)
	assert.Equal(t, codec.CommandFrame{
		Tick:             7,
		TimestampNs:      12345,
		SimTime:          0.07,
		RunID:            "run-1",
		Motors:           snap.Motors,
		CollectiveThrust: 4.9,
	}, frame)
}

func TestCommandPublisherReturnsTransportError(t *testing.T) {
	rec := &recordingPublisher{err: ErrServiceClosed}
	p := NewCommandPublisher(rec, "run-1", quietLogger())

	assert.ErrorIs(t, p.PublishTick(control.TickSnapshot{}), ErrServiceClosed)
}

func TestPayloadSkipsTopicFrame(t *testing.T) {
	assert.Nil(t, payload(nil))
	assert.Equal(t, []byte("b"), payload([][]byte{[]byte("a"), []byte("b")}))

	env, _ := json.Marshal(ZeroMQMessage{Type: MsgTypeEstimatedState})
	assert.Equal(t, env, payload([][]byte{env}))
}
