package telemetry

import (
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/open-teleop/quadcontrol/pkg/control"
)

// Telemetry is what the telemetry endpoint reports.
type Telemetry struct {
	RunID      string                 `json:"run_id"`
	Controller string                 `json:"controller"`
	StartedAt  time.Time              `json:"started_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
	Ticks      uint64                 `json:"ticks"`
	Latest     *control.TickSnapshot  `json:"latest,omitempty"`
	Stats      map[string]interface{} `json:"stats,omitempty"`
}

// StatsFunc returns a JSON-serializable view of a component's counters.
type StatsFunc func() interface{}

// TelemetryService keeps the latest tick snapshot of the controller and fans
// snapshots out to live subscribers.
type TelemetryService struct {
	mu         sync.RWMutex
	runID      uuid.UUID
	controller string
	startedAt  time.Time
	updatedAt  time.Time
	ticks      uint64
	latest     *control.TickSnapshot
	stats      map[string]StatsFunc

	subMu  sync.Mutex
	subs   map[int]chan control.TickSnapshot
	nextID int
}

// NewTelemetryService creates a new telemetry service with a fresh run ID.
func NewTelemetryService(controller string) *TelemetryService {
	return &TelemetryService{
		runID:      uuid.New(),
		controller: controller,
		startedAt:  time.Now(),
		stats:      make(map[string]StatsFunc),
		subs:       make(map[int]chan control.TickSnapshot),
	}
}

// RunID identifies this controller process in telemetry and on the wire.
func (s *TelemetryService) RunID() string { return s.runID.String() }

// AddStats registers a counter source reported under name.
func (s *TelemetryService) AddStats(name string, fn StatsFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[name] = fn
}

// Record stores snap as the latest tick and forwards it to subscribers. A
// subscriber that is not keeping up misses snapshots. It never fails; the
// error result lets it run as an output pool processor.
func (s *TelemetryService) Record(snap control.TickSnapshot) error {
	s.mu.Lock()
	s.latest = &snap
	s.ticks++
	s.updatedAt = time.Now()
	s.mu.Unlock()

	s.subMu.Lock()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
	s.subMu.Unlock()
	return nil
}

// Subscribe returns a channel of recorded snapshots and a function that
// cancels the subscription and closes the channel.
func (s *TelemetryService) Subscribe(buffer int) (<-chan control.TickSnapshot, func()) {
	ch := make(chan control.TickSnapshot, buffer)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions.
func (s *TelemetryService) Subscribers() int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subs)
}

// GetTelemetry returns the current telemetry
func (s *TelemetryService) GetTelemetry() Telemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := Telemetry{
		RunID:      s.runID.String(),
		Controller: s.controller,
		StartedAt:  s.startedAt,
		UpdatedAt:  s.updatedAt,
		Ticks:      s.ticks,
	}
	if s.latest != nil {
		latest := *s.latest
		t.Latest = &latest
	}
	if len(s.stats) > 0 {
		names := make([]string, 0, len(s.stats))
		for name := range s.stats {
			names = append(names, name)
		}
		sort.Strings(names)
		t.Stats = make(map[string]interface{}, len(names))
		for _, name := range names {
			t.Stats[name] = s.stats[name]()
		}
	}
	return t
}

// GetTelemetryHandler handles API requests for controller telemetry
func (s *TelemetryService) GetTelemetryHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "success",
		"telemetry": s.GetTelemetry(),
	})
}
