// Command templates precomputes the growth-form shape templates for a world
// size and writes them as JSON for later runs to load with -templates.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/reef/components"
	"github.com/pthm-cable/reef/config"
	"github.com/pthm-cable/reef/morphology"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	size := flag.Int("size", 0, "World size (0 = world.size from config)")
	out := flag.String("out", "templates.json", "Output file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	n := cfg.World.Size
	if *size > 0 {
		n = *size
	}

	lib, err := writeTemplates(*out, n, morphology.Params{
		StemHeight: cfg.Morphology.StemHeight,
		StemRadius: cfg.Morphology.StemRadius,
	})
	if err != nil {
		slog.Error("failed to write templates", "error", err)
		os.Exit(1)
	}

	for _, f := range components.AllForms() {
		slog.Info("template", "form", f.String(), "voxels", lib.Template(f).Len())
	}
	slog.Info("templates written", "path", *out, "size", n)
}

// writeTemplates builds the library for size n and writes it to path.
func writeTemplates(path string, n int, p morphology.Params) (*morphology.Library, error) {
	lib, err := morphology.Build(n, p)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	if err := lib.WriteJSON(f); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing %s: %w", path, err)
	}
	return lib, nil
}
