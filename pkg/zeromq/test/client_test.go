package test

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/quadcontrol/pkg/codec"
)

// These tests are meant to be run manually against a running controller:
//
//	QUADCONTROL_STATE_ADDR=tcp://localhost:5555 \
//	QUADCONTROL_COMMAND_ADDR=tcp://localhost:5556 go test ./pkg/zeromq/test -v

func addr(t *testing.T, env string) string {
	a := os.Getenv(env)
	if a == "" {
		t.Skipf("%s not set; skipping manual controller test", env)
	}
	return a
}

// TestEstimatorPublisher plays an estimator: a vehicle hovering at 1 m
// while slowly turning.
func TestEstimatorPublisher(t *testing.T) {
	address := addr(t, "QUADCONTROL_STATE_ADDR")

	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		t.Fatalf("Failed to create PUB socket: %v", err)
	}
	defer socket.Close()

	if err := socket.Connect(address); err != nil {
		t.Fatalf("Failed to connect to controller: %v", err)
	}
	time.Sleep(200 * time.Millisecond) // slow joiner

	for i := 0; i < 200; i++ {
		yaw := 0.01 * float64(i)
		msg := map[string]interface{}{
			"type":      "ESTIMATED_STATE",
			"timestamp": float64(time.Now().UnixNano()) / 1e9,
			"data": map[string]interface{}{
				"position": map[string]float64{"x": 0, "y": 0, "z": -1},
				"attitude": map[string]float64{"w": math.Cos(yaw / 2), "z": math.Sin(yaw / 2)},
			},
		}
		data, err := json.Marshal(msg)
		if err != nil {
			t.Fatalf("Failed to marshal state: %v", err)
		}
		if _, err := socket.SendMessage("quad.state", data); err != nil {
			t.Fatalf("Failed to send state: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// TestCommandSubscriber prints the motor commands the controller publishes.
func TestCommandSubscriber(t *testing.T) {
	address := addr(t, "QUADCONTROL_COMMAND_ADDR")

	socket, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		t.Fatalf("Failed to create SUB socket: %v", err)
	}
	defer socket.Close()

	if err := socket.Connect(address); err != nil {
		t.Fatalf("Failed to connect to controller: %v", err)
	}
	if err := socket.SetSubscribe(codec.MotorCommandTopic); err != nil {
		t.Fatalf("Failed to set subscription: %v", err)
	}
	socket.SetRcvtimeo(5 * time.Second)

	fmt.Printf("Subscribed to '%s', waiting for commands...\n", codec.MotorCommandTopic)

	for i := 0; i < 20; i++ {
		frames, err := socket.RecvMessageBytes(0)
		if err != nil {
			t.Fatalf("Failed to receive command: %v", err)
		}
		if len(frames) != 2 {
			t.Fatalf("Expected topic and payload frames, got %d", len(frames))
		}

		cmd, err := codec.DecodeMotorCommand(frames[1])
		if err != nil {
			t.Fatalf("Failed to decode command: %v", err)
		}
		fmt.Printf("tick=%d t=%.3f thrust=%.3f motors=%v run=%s\n",
			cmd.Tick, cmd.SimTime, cmd.CollectiveThrust, cmd.Motors, cmd.RunID)
	}
}
