// Package web exposes the rig manager and camera selection over HTTP and
// websockets.
package web

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-camrig/pkg/hub"
	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/selection"
)

// Config wires the server to the objects it exposes.
type Config struct {
	Addr    string
	Rigs    *rig.Manager
	Cameras *selection.Registry
	Volumes *selection.Volumes

	// Orientation carries rig snapshots and camera events to
	// /ws/orientation clients. It is run by Start.
	Orientation *hub.Hub

	Logger *slog.Logger
}

// Server is the control surface.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	rigs    *rig.Manager
	cameras *selection.Registry
	volumes *selection.Volumes

	orientationHub *hub.Hub
	inputHub       *hub.Hub
}

// NewServer creates the fiber app and registers every route.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Orientation == nil {
		cfg.Orientation = hub.New("orientation", logger)
	}

	s := &Server{
		addr:           cfg.Addr,
		logger:         logger.With("component", "web"),
		rigs:           cfg.Rigs,
		cameras:        cfg.Cameras,
		volumes:        cfg.Volumes,
		orientationHub: cfg.Orientation,
		inputHub:       hub.New("input", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "camrigd",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)

	rigs := api.Group("/rigs")
	rigs.Get("/", s.handleListRigs)
	rigs.Get("/:id", s.handleGetRig)
	rigs.Post("/:id/input", s.handleInput)
	rigs.Post("/:id/end-input", s.handleEndInput)
	rigs.Post("/:id/stop", s.handleStop)
	rigs.Post("/:id/reset", s.handleReset)
	rigs.Post("/:id/frame", s.handleFrame)
	rigs.Post("/:id/in-view", s.handleInView)
	rigs.Put("/:id/config", s.handleReconfigure)

	cams := api.Group("/cameras")
	cams.Get("/", s.handleListCameras)
	cams.Post("/:id/switch", s.handleSwitchCamera)

	vols := api.Group("/volumes")
	vols.Get("/", s.handleListVolumes)
	vols.Put("/auto-switch", s.handleAutoSwitch)
	vols.Post("/:id/enter", s.handleVolumeEnter)
	vols.Post("/:id/exit", s.handleVolumeExit)
	vols.Post("/:id/disable", s.handleVolumeDisable)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/orientation", websocket.New(s.handleOrientationWS))
	app.Get("/ws/rigs/:id/input", websocket.New(s.handleInputWS))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// OrientationHub returns the hub used for /ws/orientation.
func (s *Server) OrientationHub() *hub.Hub { return s.orientationHub }

// Start runs the hubs and serves until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	go s.orientationHub.Run(ctx)
	go s.inputHub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("control surface listening", "addr", s.addr)
		errCh <- s.app.Listen(s.addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Shutdown(5 * time.Second)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}
