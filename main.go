package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/game"
	"github.com/pthm-cable/reef/morphology"
	"github.com/pthm-cable/reef/stream"
	"github.com/pthm-cable/reef/telemetry"
	"github.com/pthm-cable/reef/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = world.seed from config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = run.ticks from config)")
	serve := flag.String("serve", "", "Listen address for the websocket diff feed (empty = off)")
	templates := flag.String("templates", "", "Precomputed templates.json (empty = build at startup)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, runOptions{
		configPath: *configPath,
		headless:   *headless,
		logStats:   *logStats,
		outputDir:  *outputDir,
		seed:       *seed,
		maxTicks:   *maxTicks,
		serve:      *serve,
		templates:  *templates,
	}); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	headless   bool
	logStats   bool
	outputDir  string
	seed       int64
	maxTicks   int
	serve      string
	templates  string
}

func run(logger *slog.Logger, o runOptions) error {
	// Initialize config before anything else
	if err := config.Init(o.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()
	if o.seed != 0 {
		cfg.World.Seed = o.seed
	}
	if o.maxTicks > 0 {
		cfg.Run.Ticks = o.maxTicks
	}
	if err := cfg.Refresh(); err != nil {
		return err
	}
	limit := cfg.Run.Ticks

	lib, err := loadTemplates(o.templates)
	if err != nil {
		return err
	}

	output, err := telemetry.NewOutputManager(o.outputDir)
	if err != nil {
		return err
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		return err
	}

	sim, err := game.New(cfg, lib, game.Options{
		Logger:   logger,
		Output:   output,
		LogStats: o.logStats,
	})
	if err != nil {
		return err
	}

	var hub *stream.Hub
	if o.serve != "" {
		hub = stream.NewHub(logger)
		defer hub.Close()
		srv := stream.NewServer(o.serve, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("stream server failed", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		logger.Info("streaming diffs", "addr", o.serve)
	}

	publish := func(t game.Tick) {
		if hub == nil {
			return
		}
		if err := hub.Publish(t); err != nil {
			logger.Warn("publish failed", "tick", t.Tick, "error", err)
		}
	}

	if o.headless {
		logger.Info("starting headless simulation",
			"seed", cfg.World.Seed,
			"size", cfg.World.Size,
			"ticks", limit,
			"years", cfg.Derived.Years,
		)
		for sim.CurrentTick() < limit {
			t, err := sim.Step()
			if err != nil {
				return err
			}
			publish(t)
		}
		logger.Info("run complete", "tick", sim.CurrentTick(), "metrics", sim.Metrics())
		return nil
	}

	// Graphical mode
	v := viewer.New(sim, viewer.Options{
		MaxTicks: limit,
		Logger:   logger,
		OnTick:   publish,
	})
	return v.Run()
}

// loadTemplates reads a precomputed library, or returns nil to build one.
func loadTemplates(path string) (*morphology.Library, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening templates: %w", err)
	}
	defer f.Close()
	return morphology.ReadJSON(f)
}
