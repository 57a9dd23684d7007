package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/reef/config"
)

// csvFile is one output table; the header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func writeRows[T any](cf *csvFile, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	if !cf.headerWritten {
		if err := gocsv.Marshal(rows, cf.f); err != nil {
			return err
		}
		cf.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(rows, cf.f)
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir string

	metrics   *csvFile
	events    *csvFile
	windows   *csvFile
	perf      *csvFile
	bookmarks *csvFile
	lifetimes *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"metrics.csv", &om.metrics},
		{"events.csv", &om.events},
		{"windows.csv", &om.windows},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
		{"lifetimes.csv", &om.lifetimes},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		*file.dst = &csvFile{f: f}
	}
	return om, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteMetrics writes one tick's metrics row to metrics.csv.
func (om *OutputManager) WriteMetrics(m Metrics) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.metrics, []Metrics{m}); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// WriteEvents writes a tick's events to events.csv.
func (om *OutputManager) WriteEvents(events []Event) error {
	if om == nil || len(events) == 0 {
		return nil
	}
	rows := make([]EventCSV, len(events))
	for i, e := range events {
		rows[i] = e.ToCSV()
	}
	if err := writeRows(om.events, rows); err != nil {
		return fmt.Errorf("writing events: %w", err)
	}
	return nil
}

// WriteWindow writes a window stats record to windows.csv.
func (om *OutputManager) WriteWindow(s WindowStats) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.windows, []WindowStats{s}); err != nil {
		return fmt.Errorf("writing window stats: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.bookmarks, []Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteLifetime writes a finished colony record to lifetimes.csv.
func (om *OutputManager) WriteLifetime(l ColonyLifetime) error {
	if om == nil {
		return nil
	}
	if err := writeRows(om.lifetimes, []ColonyLifetime{l}); err != nil {
		return fmt.Errorf("writing lifetime: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, cf := range []*csvFile{om.metrics, om.events, om.windows, om.perf, om.bookmarks, om.lifetimes} {
		if cf == nil {
			continue
		}
		if err := cf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ io.Closer = (*OutputManager)(nil)
