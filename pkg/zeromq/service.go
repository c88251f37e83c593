package zeromq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/open-teleop/quadcontrol/pkg/config"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// Common errors
var (
	ErrServiceClosed      = errors.New("zeromq service is closed")
	ErrInvalidMessage     = errors.New("invalid message format")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Message types
const (
	MsgTypeEstimatedState = "ESTIMATED_STATE"
	MsgTypeTickSnapshot   = "TICK_SNAPSHOT"
)

// ZeroMQMessage is the JSON envelope of every non-FlatBuffer message.
type ZeroMQMessage struct {
	Type      string          `json:"type"`
	Timestamp float64         `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MessageHandler processes one message type. Messages arrive on a SUB socket,
// so there is no reply.
type MessageHandler interface {
	HandleMessage(msg ZeroMQMessage) error
}

// HandlerFunc is a function type that implements MessageHandler
type HandlerFunc func(msg ZeroMQMessage) error

// HandleMessage calls the function
func (f HandlerFunc) HandleMessage(msg ZeroMQMessage) error {
	return f(msg)
}

// Stats counts traffic through the service.
type Stats struct {
	Received  uint64 `json:"received"`
	Rejected  uint64 `json:"rejected"`
	Published uint64 `json:"published"`
	Failed    uint64 `json:"failed"`
}

type counters struct {
	received, rejected, published, failed atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Received:  c.received.Load(),
		Rejected:  c.rejected.Load(),
		Published: c.published.Load(),
		Failed:    c.failed.Load(),
	}
}

// MessageSender handles sending messages on the PUB socket
type MessageSender struct {
	socket  *zmq4.Socket
	logger  customlog.Logger
	running bool
	mu      sync.Mutex
}

func newMessageSender(ctx *zmq4.Context, address string, logger customlog.Logger) (*MessageSender, error) {
	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	// Never let a slow subscriber block the control loop.
	if err := socket.SetSndhwm(16); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set send high water mark: %w", err)
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	logger.Infof("MessageSender initialized on %s", address)

	return &MessageSender{
		socket:  socket,
		logger:  logger,
		running: true,
	}, nil
}

// PublishMessage sends a message with the given topic
func (s *MessageSender) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServiceClosed
	}

	// Send two frames in sequence (topic first, then message)
	if _, err := s.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := s.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close cleans up resources
func (s *MessageSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}

// MessageDispatcher routes messages to the appropriate handlers
type MessageDispatcher struct {
	handlers map[string]MessageHandler
	logger   customlog.Logger
	mu       sync.RWMutex
}

// NewMessageDispatcher creates a new message dispatcher
func NewMessageDispatcher(logger customlog.Logger) *MessageDispatcher {
	return &MessageDispatcher{
		handlers: make(map[string]MessageHandler),
		logger:   logger,
	}
}

// RegisterHandler adds a handler for a specific message type
func (d *MessageDispatcher) RegisterHandler(messageType string, handler MessageHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[messageType] = handler
	d.logger.Infof("Registered handler for message type: %s", messageType)
}

// Dispatch decodes the JSON envelope and hands it to the handler registered
// for its type.
func (d *MessageDispatcher) Dispatch(data []byte) error {
	var msg ZeroMQMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	d.mu.RLock()
	handler, exists := d.handlers[msg.Type]
	d.mu.RUnlock()

	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownMessageType, msg.Type)
	}
	return handler.HandleMessage(msg)
}

// ZeroMQService owns the ZeroMQ context, the estimated-state SUB socket and
// the motor-command PUB socket.
type ZeroMQService struct {
	config     config.ZeroMQBootstrap
	ctx        *zmq4.Context
	receiver   *StateReceiver
	sender     *MessageSender
	dispatcher *MessageDispatcher
	logger     customlog.Logger
	stats      *counters
	running    atomic.Bool
	wg         sync.WaitGroup
}

// NewZeroMQService creates the sockets and binds them. Nothing is received
// until Start.
func NewZeroMQService(cfg config.ZeroMQBootstrap, logger customlog.Logger) (*ZeroMQService, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	s := &ZeroMQService{
		config:     cfg,
		ctx:        ctx,
		dispatcher: NewMessageDispatcher(logger),
		logger:     logger,
		stats:      &counters{},
	}

	s.receiver, err = newStateReceiver(ctx, cfg.StateBindAddress, s.dispatcher, s.stats, logger, &s.wg)
	if err != nil {
		ctx.Term()
		return nil, err
	}

	s.sender, err = newMessageSender(ctx, cfg.CommandBindAddress, logger)
	if err != nil {
		s.receiver.Close()
		ctx.Term()
		return nil, err
	}

	return s, nil
}

// RegisterHandler adds a handler for a specific message type
func (s *ZeroMQService) RegisterHandler(messageType string, handler MessageHandler) {
	s.dispatcher.RegisterHandler(messageType, handler)
}

// RegisterHandlerFunc adds a handler function for a specific message type
func (s *ZeroMQService) RegisterHandlerFunc(messageType string, handler func(ZeroMQMessage) error) {
	s.dispatcher.RegisterHandler(messageType, HandlerFunc(handler))
}

// Start begins receiving estimated state.
func (s *ZeroMQService) Start() error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Infof("Starting ZeroMQ service")
	s.receiver.Start()
	return nil
}

// Stop halts the receiver, closes both sockets and terminates the context.
func (s *ZeroMQService) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	s.logger.Infof("Stopping ZeroMQ service")
	s.receiver.Stop()
	s.sender.Close()

	s.logger.Debugf("Waiting for receiver goroutine to finish...")
	s.wg.Wait()
	s.receiver.Close()

	if s.ctx != nil {
		s.ctx.Term()
		s.ctx = nil
	}
	s.logger.Infof("ZeroMQ service stopped")
}

// PublishMessage sends a message with the given topic
func (s *ZeroMQService) PublishMessage(topic string, message []byte) error {
	if !s.running.Load() {
		return ErrServiceClosed
	}
	if err := s.sender.PublishMessage(topic, message); err != nil {
		s.stats.failed.Add(1)
		return err
	}
	s.stats.published.Add(1)
	return nil
}

// PublishJSON publishes a JSON-serializable message with the given topic
func (s *ZeroMQService) PublishJSON(topic string, messageType string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message data: %w", err)
	}

	msgData, err := json.Marshal(ZeroMQMessage{
		Type:      messageType,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Data:      payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return s.PublishMessage(topic, msgData)
}

// Stats returns the traffic counters.
func (s *ZeroMQService) Stats() Stats { return s.stats.snapshot() }
