package api

import (
	"errors"
	"strconv"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	"github.com/open-teleop/quadcontrol/domain/telemetry"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
)

// telemetryBuffer is the per-connection backlog of tick snapshots. A client
// that falls further behind misses ticks.
const telemetryBuffer = 64

// TelemetryWebSocketHandler streams tick snapshots to a client as JSON
// TelemetryFrames. The optional "every" query parameter sends only every
// n-th recorded tick.
func TelemetryWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, tel *telemetry.TelemetryService) {
	logger.Infof("Telemetry WebSocket connected: %s", conn.RemoteAddr())

	every, err := strconv.Atoi(conn.Query("every", "1"))
	if err != nil || every < 1 {
		logger.Warnf("Ignoring invalid telemetry decimation %q", conn.Query("every"))
		every = 1
	}

	snaps, cancel := tel.Subscribe(telemetryBuffer)
	defer cancel()

	// Clients only listen, so reading exists to notice the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logClose(logger, err)
				return
			}
		}
	}()

	var seen int
	for {
		select {
		case <-closed:
			logger.Infof("Telemetry WebSocket disconnected: %s", conn.RemoteAddr())
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			seen++
			if seen%every != 0 {
				continue
			}
			if err := conn.WriteJSON(TelemetryFrame{RunID: tel.RunID(), Tick: snap}); err != nil {
				logClose(logger, err)
				return
			}
		}
	}
}

func logClose(logger customlog.Logger, err error) {
	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
		logger.Errorf("Telemetry WS error: %v", err)
		return
	}
	if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
		logger.Infof("Telemetry WS connection closed: %v", err)
		return
	}
	logger.Infof("Telemetry WS connection closed normally.")
}
