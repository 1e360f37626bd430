// Command camrigd runs the rig loop and serves the control surface.
//
// Usage:
//
//	CAMRIG_RIGS=rigs.yaml go run ./cmd/camrigd
//	go run ./cmd/camrigd -rigs rigs.yaml -addr :8080 -log-level debug
//
// Orientation telemetry is shipped to Kafka when CAMRIG_KAFKA_BROKERS is set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-camrig/internal/config"
	"github.com/teslashibe/go-camrig/internal/log"
	"github.com/teslashibe/go-camrig/pkg/hub"
	"github.com/teslashibe/go-camrig/pkg/rig"
	"github.com/teslashibe/go-camrig/pkg/selection"
	"github.com/teslashibe/go-camrig/pkg/telemetry"
	"github.com/teslashibe/go-camrig/pkg/web"
)

type options struct {
	addr       string
	rigsFile   string
	rate       time.Duration
	wsInterval time.Duration
	heartbeat  float64
	brokers    []string
	topic      string
}

func main() {
	addr := flag.String("addr", config.Addr(), "Control surface listen address")
	rigsFile := flag.String("rigs", config.RigsFile(), "Rig file (YAML); a single default rig when empty")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	wsInterval := flag.Duration("ws-interval", 50*time.Millisecond, "Minimum spacing of orientation broadcasts")
	heartbeat := flag.Float64("heartbeat", 10, "Seconds between loop heartbeat logs (0 disables)")
	flag.Parse()

	log.Init(*logLevel)
	logger := log.Component("camrigd")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, logger, options{
		addr:       *addr,
		rigsFile:   *rigsFile,
		rate:       config.TickRate(),
		wsInterval: *wsInterval,
		heartbeat:  *heartbeat,
		brokers:    config.KafkaBrokers(),
		topic:      config.KafkaTopic(),
	})
	if err != nil {
		logger.Error("camrigd failed", "error", err)
		os.Exit(1)
	}
	logger.Info("goodbye")
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	file := config.DefaultFile()
	if opts.rigsFile != "" {
		f, err := config.LoadRigs(opts.rigsFile)
		if err != nil {
			return err
		}
		file = f
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	orientation := hub.New("orientation", log.L())

	rigOpts := []rig.Option{
		rig.WithLogger(log.L()),
		rig.WithHeartbeat(opts.heartbeat),
		rig.WithPublisher(web.NewOrientationPublisher(orientation, opts.wsInterval)),
	}
	if len(opts.brokers) > 0 {
		pub := telemetry.New(
			telemetry.NewKafkaWriter(opts.brokers, opts.topic),
			telemetry.WithLogger(log.L()),
		)
		go pub.Run(ctx)
		rigOpts = append(rigOpts, rig.WithPublisher(pub))
		logger.Info("telemetry enabled", "brokers", opts.brokers, "topic", opts.topic)
	}

	rigs := rig.NewManager(opts.rate, rigOpts...)
	for _, def := range file.Definitions() {
		snap, err := rigs.Add(def)
		if err != nil {
			return err
		}
		for _, e := range snap.SetupErrors {
			logger.Warn("rig setup problem", "rig", snap.ID, "error", e)
		}
	}

	cameras := selection.NewRegistry(web.CameraActivator(orientation, logger), log.L())
	for _, cam := range file.Cameras {
		if _, err := cameras.Register(cam); err != nil {
			return err
		}
	}
	volumes := selection.NewVolumes(cameras, log.L())
	for _, vol := range file.Volumes {
		if err := volumes.Add(vol); err != nil {
			return err
		}
	}

	srv := web.NewServer(web.Config{
		Addr:        opts.addr,
		Rigs:        rigs,
		Cameras:     cameras,
		Volumes:     volumes,
		Orientation: orientation,
		Logger:      log.L(),
	})

	logger.Info("starting",
		"addr", opts.addr,
		"rigs", rigs.Len(),
		"cameras", len(file.Cameras),
		"volumes", len(file.Volumes),
		"hz", 1/opts.rate.Seconds())

	errCh := make(chan error, 2)
	go func() {
		if err := rigs.Run(ctx); err != nil {
			errCh <- fmt.Errorf("rig loop: %w", err)
		}
	}()
	go func() {
		errCh <- srv.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		// Start shuts the server down on cancellation
		return drain(errCh)
	case err := <-errCh:
		cancel()
		return err
	}
}

// drain waits briefly for the server to report its shutdown result.
func drain(errCh <-chan error) error {
	select {
	case err := <-errCh:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	case <-time.After(6 * time.Second):
		return errors.New("shutdown timed out")
	}
}
