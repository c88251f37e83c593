package api

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/open-teleop/quadcontrol/domain/telemetry"
	"github.com/open-teleop/quadcontrol/domain/vehicle"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
	"github.com/open-teleop/quadcontrol/services"
)

// Routes collects what the HTTP API serves.
type Routes struct {
	Telemetry *telemetry.TelemetryService
	States    *vehicle.StateBuffer
	Params    services.ParamsService // nil when parameters come from the hardware table
	Logger    customlog.Logger
	RateHz    float64

	// StaleAfter is the estimate age past which /health reports the state
	// as unhealthy. Zero means 100ms.
	StaleAfter time.Duration
}

// Register mounts every endpoint on app.
func (r Routes) Register(app *fiber.App) {
	stale := r.StaleAfter
	if stale <= 0 {
		stale = 100 * time.Millisecond
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		tel := r.Telemetry.GetTelemetry()
		_, received := r.States.Latest()
		age := r.States.Age()
		resp := HealthResponse{
			Status:       "healthy",
			Controller:   tel.Controller,
			RunID:        tel.RunID,
			Ticks:        tel.Ticks,
			StateAgeMs:   age.Milliseconds(),
			StateHealthy: received && age <= stale,
			RateHz:       r.RateHz,
		}
		if !resp.StateHealthy {
			resp.Status = "waiting_for_state"
		}
		return c.JSON(resp)
	})

	v1 := app.Group("/api/v1")
	v1.Get("/telemetry", r.Telemetry.GetTelemetryHandler)

	state := vehicle.NewStateService(r.States)
	v1.Get("/state", state.GetStateHandler)
	v1.Post("/state", state.PostStateHandler)

	if r.Params != nil {
		RegisterParamsRoutes(app, r.Params, r.Logger)
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(func(conn *websocket.Conn) {
		TelemetryWebSocketHandler(conn, r.Logger, r.Telemetry)
	}))

	r.Logger.Infof("Registered HTTP API routes")
}
