package processing

import (
	"time"

	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// LoggingResultHandler logs failed and slow tick outputs
type LoggingResultHandler struct {
	logger   customlog.Logger
	slowTick time.Duration
}

// NewLoggingResultHandler creates a new logging result handler. Results
// taking longer than slowTick are logged as warnings; zero disables that.
func NewLoggingResultHandler(logger customlog.Logger, slowTick time.Duration) *LoggingResultHandler {
	return &LoggingResultHandler{
		logger:   logger,
		slowTick: slowTick,
	}
}

// HandleResult handles a processed tick result
func (h *LoggingResultHandler) HandleResult(result *ProcessResult) {
	if result.Error != nil {
		h.logger.Errorf("%s pool failed on tick %d: %v", result.Pool, result.Tick, result.Error)
		return
	}
	if h.slowTick > 0 && result.Duration > h.slowTick {
		h.logger.Warnf("%s pool took %v for tick %d", result.Pool, result.Duration, result.Tick)
		return
	}
	h.logger.Debugf("%s pool processed tick %d in %v", result.Pool, result.Tick, result.Duration)
}

// CreateHandlerFunc creates a ResultHandler function for the OutputPool
func (h *LoggingResultHandler) CreateHandlerFunc() ResultHandler {
	return func(processResult *ProcessResult) {
		if processResult == nil {
			h.logger.Errorf("Received nil ProcessResult")
			return
		}
		h.HandleResult(processResult)
	}
}
