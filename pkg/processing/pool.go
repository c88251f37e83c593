package processing

import (
	"sync"
	"time"

	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// ProcessResult is the outcome of processing one tick
type ProcessResult struct {
	Pool     string
	Tick     uint64
	Duration time.Duration
	Error    error
}

// ResultHandler is a function that handles processed results
type ResultHandler func(result *ProcessResult)

// TickProcessor consumes one tick snapshot in a worker
type TickProcessor func(snap control.TickSnapshot) error

// OutputPool hands tick snapshots to a fixed set of workers. Submit never
// blocks: when the queue is full the snapshot is dropped and counted, so a
// slow consumer cannot delay the control loop. With one worker snapshots are
// processed in tick order.
type OutputPool struct {
	name          string
	workerCount   int
	logger        customlog.Logger
	queue         chan control.TickSnapshot
	running       bool
	wg            sync.WaitGroup
	mu            sync.RWMutex
	processor     TickProcessor
	resultHandler ResultHandler
	queueSize     int
	metrics       *PoolMetrics
}

// PoolMetrics tracks metrics for an output pool
type PoolMetrics struct {
	QueuedCount       int64 `json:"queued"`
	DroppedCount      int64 `json:"dropped"`
	ProcessedCount    int64 `json:"processed"`
	ErrorCount        int64 `json:"errors"`
	LastProcessedTime int64 `json:"last_processed_ns"`
	ProcessingTimeAvg int64 `json:"processing_time_avg_us"`
	ProcessingTimeMax int64 `json:"processing_time_max_us"`
	mu                sync.Mutex
}

// NewOutputPool creates a new output pool
func NewOutputPool(
	name string,
	workerCount int,
	queueSize int,
	processor TickProcessor,
	logger customlog.Logger,
) *OutputPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &OutputPool{
		name:        name,
		workerCount: workerCount,
		queueSize:   queueSize,
		logger:      logger,
		processor:   processor,
		queue:       make(chan control.TickSnapshot, queueSize),
		metrics:     &PoolMetrics{},
	}
}

// SetResultHandler sets the result handler function. It must be called
// before Start.
func (p *OutputPool) SetResultHandler(handler ResultHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resultHandler = handler
}

// Submit queues a snapshot. It reports false when the pool is stopped or the
// queue is full.
func (p *OutputPool) Submit(snap control.TickSnapshot) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.running {
		return false
	}

	select {
	case p.queue <- snap:
		p.metrics.mu.Lock()
		p.metrics.QueuedCount++
		p.metrics.mu.Unlock()
		return true
	default:
		p.metrics.mu.Lock()
		p.metrics.DroppedCount++
		dropped := p.metrics.DroppedCount
		p.metrics.mu.Unlock()
		// One line per 100 drops keeps a stalled consumer from flooding the log.
		if dropped%100 == 1 {
			p.logger.Warnf("%s pool queue is full, dropped tick %d (%d dropped so far)", p.name, snap.Tick, dropped)
		}
		return false
	}
}

// Start starts the pool workers
func (p *OutputPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.logger.Infof("Starting %s pool with %d workers", p.name, p.workerCount)

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i, p.resultHandler)
	}
}

// Stop drains the queue and waits for the workers to finish. A stopped pool
// cannot be restarted.
func (p *OutputPool) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.queue)
	p.mu.Unlock()

	p.logger.Infof("Stopping %s pool", p.name)
	p.wg.Wait()
	p.logger.Infof("%s pool stopped", p.name)

	p.logMetrics()
}

func (p *OutputPool) worker(id int, resultHandler ResultHandler) {
	defer p.wg.Done()

	p.logger.Debugf("%s pool worker %d started", p.name, id)

	for snap := range p.queue {
		startTime := time.Now()
		err := p.processor(snap)
		elapsed := time.Since(startTime)
		processingTime := elapsed.Microseconds()

		p.metrics.mu.Lock()
		p.metrics.ProcessedCount++
		p.metrics.LastProcessedTime = time.Now().UnixNano()
		if p.metrics.ProcessingTimeAvg == 0 {
			p.metrics.ProcessingTimeAvg = processingTime
		} else {
			// Simple moving average
			p.metrics.ProcessingTimeAvg = (p.metrics.ProcessingTimeAvg + processingTime) / 2
		}
		if processingTime > p.metrics.ProcessingTimeMax {
			p.metrics.ProcessingTimeMax = processingTime
		}
		if err != nil {
			p.metrics.ErrorCount++
		}
		p.metrics.mu.Unlock()

		if resultHandler != nil {
			resultHandler(&ProcessResult{
				Pool:     p.name,
				Tick:     snap.Tick,
				Duration: elapsed,
				Error:    err,
			})
		}
	}

	p.logger.Debugf("%s pool worker %d stopped", p.name, id)
}

// GetMetrics returns a copy of the current metrics
func (p *OutputPool) GetMetrics() PoolMetrics {
	p.metrics.mu.Lock()
	defer p.metrics.mu.Unlock()

	return PoolMetrics{
		QueuedCount:       p.metrics.QueuedCount,
		DroppedCount:      p.metrics.DroppedCount,
		ProcessedCount:    p.metrics.ProcessedCount,
		ErrorCount:        p.metrics.ErrorCount,
		LastProcessedTime: p.metrics.LastProcessedTime,
		ProcessingTimeAvg: p.metrics.ProcessingTimeAvg,
		ProcessingTimeMax: p.metrics.ProcessingTimeMax,
	}
}

func (p *OutputPool) logMetrics() {
	m := p.GetMetrics()

	p.logger.Infof("%s pool metrics: processed=%d, dropped=%d, errors=%d, avg_time=%dµs, max_time=%dµs",
		p.name, m.ProcessedCount, m.DroppedCount, m.ErrorCount,
		m.ProcessingTimeAvg, m.ProcessingTimeMax)
}

// GetName returns the pool name
func (p *OutputPool) GetName() string {
	return p.name
}

// GetQueueLength returns the current length of the queue
func (p *OutputPool) GetQueueLength() int {
	return len(p.queue)
}

// GetQueueCapacity returns the capacity of the queue
func (p *OutputPool) GetQueueCapacity() int {
	return p.queueSize
}
