package zeromq

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// StateTopic prefixes estimator messages. A single-frame message without a
// topic frame is accepted as well.
const StateTopic = "quad.state"

// StateReceiver listens on a SUB socket for estimator output and hands every
// message to the dispatcher.
type StateReceiver struct {
	socket     *zmq4.Socket
	poller     *zmq4.Poller
	dispatcher *MessageDispatcher
	stats      *counters
	logger     customlog.Logger
	running    atomic.Bool
	wg         *sync.WaitGroup
}

func newStateReceiver(ctx *zmq4.Context, address string, dispatcher *MessageDispatcher, stats *counters, logger customlog.Logger, wg *sync.WaitGroup) (*StateReceiver, error) {
	socket, err := ctx.NewSocket(zmq4.SUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetRcvhwm(64); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set receive high water mark: %w", err)
	}
	if err := socket.SetSubscribe(""); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	poller := zmq4.NewPoller()
	poller.Add(socket, zmq4.POLLIN)

	logger.Infof("StateReceiver initialized on %s", address)

	return &StateReceiver{
		socket:     socket,
		poller:     poller,
		dispatcher: dispatcher,
		stats:      stats,
		logger:     logger,
		wg:         wg,
	}, nil
}

// Start begins the receive loop
func (r *StateReceiver) Start() {
	if !r.running.CompareAndSwap(false, true) {
		return
	}
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		r.logger.Infof("StateReceiver started")

		for r.running.Load() {
			// Poll with a timeout so Stop is noticed.
			sockets, err := r.poller.Poll(100 * time.Millisecond)
			if err != nil {
				if r.running.Load() {
					r.logger.Errorf("Error polling state socket: %v", err)
				}
				continue
			}
			if len(sockets) == 0 {
				continue
			}

			frames, err := r.socket.RecvMessageBytes(0)
			if err != nil {
				if r.running.Load() {
					r.logger.Errorf("Error receiving state message: %v", err)
				}
				continue
			}
			r.stats.received.Add(1)

			if err := r.dispatcher.Dispatch(payload(frames)); err != nil {
				r.stats.rejected.Add(1)
				r.logger.Warnf("Dropping state message: %v", err)
			}
		}
		r.logger.Infof("StateReceiver stopped")
	}()
}

// payload returns the last frame of a multipart message, skipping the
// optional topic frame.
func payload(frames [][]byte) []byte {
	if len(frames) == 0 {
		return nil
	}
	return frames[len(frames)-1]
}

// Stop ends the receive loop. The socket is closed by Close once the loop
// has exited.
func (r *StateReceiver) Stop() {
	r.running.Store(false)
}

// Close releases the socket.
func (r *StateReceiver) Close() {
	r.Stop()
	if r.socket != nil {
		r.socket.Close()
		r.socket = nil
	}
}
