package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/open-teleop/quadcontrol/domain/telemetry"
	"github.com/open-teleop/quadcontrol/domain/vehicle"
	"github.com/open-teleop/quadcontrol/pkg/api"
	"github.com/open-teleop/quadcontrol/pkg/config"
	"github.com/open-teleop/quadcontrol/pkg/control"
	customlog "github.com/open-teleop/quadcontrol/pkg/log"
	"github.com/open-teleop/quadcontrol/pkg/params"
	"github.com/open-teleop/quadcontrol/pkg/processing"
	"github.com/open-teleop/quadcontrol/pkg/trajectory"
	"github.com/open-teleop/quadcontrol/pkg/zeromq"
	"github.com/open-teleop/quadcontrol/services"
)

// hoverPoint is flown when no trajectory file is configured.
var hoverPoint = control.StaticTrajectory{
	Position: control.Vec3{Z: -1},
	Attitude: control.IdentityQuaternion(),
}

func main() {
	configDir := flag.String("config", "config", "directory containing "+config.BootstrapFileName)
	flag.Parse()

	cfg, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load bootstrap config: %v", err)
	}

	appLogger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	appLogger.Infof("Starting quadrotor controller %s", cfg.Control.Name)

	src, paramsService, err := paramSource(cfg, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to set up parameters: %v", err)
	}

	traj, err := trajectorySource(cfg.Control.TrajectoryFile, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to load trajectory: %v", err)
	}

	ctrl := control.New(cfg.Control.Name, src, traj, appLogger.WithFields(map[string]interface{}{
		"controller": cfg.Control.Name,
	}))

	states := vehicle.NewStateBuffer()
	tel := telemetry.NewTelemetryService(cfg.Control.Name)

	zmqService, err := zeromq.NewZeroMQService(cfg.ZeroMQ, appLogger)
	if err != nil {
		appLogger.Fatalf("Failed to create ZeroMQ service: %v", err)
	}
	zmqService.RegisterHandler(zeromq.MsgTypeEstimatedState, zeromq.NewStateHandler(states, appLogger))
	if paramsService != nil {
		paramsService.SetNotifier(zmqService)
	}

	// Output pools: commands keep tick order on a single worker, telemetry
	// only needs the latest snapshot.
	slowTick := time.Duration(2 * float64(time.Second) / cfg.Control.RateHz)
	results := processing.NewLoggingResultHandler(appLogger, slowTick)
	commands := zeromq.NewCommandPublisher(zmqService, tel.RunID(), appLogger)
	commandPool := processing.NewOutputPool("command", 1, cfg.ZeroMQ.MessageBufferSize, commands.PublishTick, appLogger)
	commandPool.SetResultHandler(results.CreateHandlerFunc())
	telemetryPool := processing.NewOutputPool("telemetry", 1, 16, tel.Record, appLogger)
	telemetryPool.SetResultHandler(results.CreateHandlerFunc())

	tel.AddStats("zeromq", func() interface{} { return zmqService.Stats() })
	tel.AddStats("command_pool", func() interface{} { return commandPool.GetMetrics() })
	tel.AddStats("telemetry_pool", func() interface{} { return telemetryPool.GetMetrics() })

	commandPool.Start()
	telemetryPool.Start()
	if err := zmqService.Start(); err != nil {
		appLogger.Fatalf("Failed to start ZeroMQ service: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := services.NewControlLoop(ctrl, states, cfg.Control.RateHz, appLogger, commandPool, telemetryPool)
	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	app := fiber.New(fiber.Config{
		AppName:      "Quadrotor Controller",
		ErrorHandler: customErrorHandler,
	})
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "online",
			"service":    "quadcontrol",
			"controller": cfg.Control.Name,
		})
	})
	api.Routes{
		Telemetry:  tel,
		States:     states,
		Params:     paramsService,
		Logger:     appLogger,
		RateHz:     cfg.Control.RateHz,
		StaleAfter: 50 * loop.Period(),
	}.Register(app)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
		appLogger.Infof("Server starting on %s", addr)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Infof("Shutting down...")

	// Stop ticking first so nothing is submitted to a stopped pool.
	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Errorf("Control loop exited: %v", err)
	}
	commandPool.Stop()
	telemetryPool.Stop()
	zmqService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Errorf("Server forced to shutdown: %v", err)
	}

	appLogger.Infof("Controller exited properly")
}

// paramSource builds the parameter source named by params.source. The
// simulator source also returns the service behind the params API.
func paramSource(cfg *config.BootstrapConfig, appLogger customlog.Logger) (control.ParamSource, services.ParamsService, error) {
	switch cfg.Params.Source {
	case config.ParamSourceSim:
		svc, err := services.NewParamsService(cfg.Params.File, appLogger)
		if err != nil {
			return nil, nil, err
		}
		store := svc.GetStore()
		if store == nil {
			return nil, nil, fmt.Errorf("parameter file '%s' could not be loaded", cfg.Params.File)
		}
		return params.NewStoreSource(store, appLogger), svc, nil

	case config.ParamSourceHardware:
		values := params.DefaultHardwareTable()
		if cfg.Params.File != "" {
			store, err := config.LoadParamStore(cfg.Params.File)
			if err != nil {
				return nil, nil, err
			}
			values = params.OverlayHardwareValues(values, store)
		}
		return params.NewHardwareTable(values, appLogger), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown parameter source '%s'", cfg.Params.Source)
}

func trajectorySource(path string, appLogger customlog.Logger) (control.TrajectorySource, error) {
	if path == "" {
		appLogger.Infof("No trajectory file configured, holding hover at %+v", hoverPoint.Position)
		return hoverPoint, nil
	}
	traj, err := trajectory.Load(path)
	if err != nil {
		return nil, err
	}
	appLogger.Infof("Loaded trajectory %s: %d points over %.2fs", path, traj.Len(), traj.Duration())
	return traj, nil
}

// Custom error handler
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
