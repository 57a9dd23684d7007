package game

import "github.com/pthm-cable/reef/telemetry"

// recordTelemetry writes per-tick output and flushes stats windows.
func (s *Simulator) recordTelemetry(t Tick) {
	if err := s.output.WriteMetrics(t.Metrics); err != nil {
		s.logger.Error("failed to write metrics", "error", err)
	}
	if err := s.output.WriteEvents(t.Events); err != nil {
		s.logger.Error("failed to write events", "error", err)
	}

	if !s.collector.ShouldFlush(t.Tick) {
		return
	}
	stats := s.collector.Flush(t.Metrics, s.colonySizes())
	perfStats := s.perf.Stats()

	if s.onWindow != nil {
		s.onWindow(stats)
	}
	if s.logStats {
		s.logger.Info("stats", "window", stats)
		s.logger.Info("perf", "stats", perfStats)
	}
	if err := s.output.WriteWindow(stats); err != nil {
		s.logger.Error("failed to write window stats", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEnd); err != nil {
		s.logger.Error("failed to write perf", "error", err)
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			s.logger.Info("bookmark", "bookmark", bm)
		}
		if err := s.output.WriteBookmark(bm); err != nil {
			s.logger.Error("failed to write bookmark", "error", err)
		}
	}
}

// colonySizes returns the cell count of each live colony.
func (s *Simulator) colonySizes() []float64 {
	sizes := make([]float64, 0, len(s.liveIDs))
	for _, id := range s.liveIDs {
		_, _, tissue, _, _ := s.colonyMapper.Get(s.live[id])
		sizes = append(sizes, float64(tissue.Len()))
	}
	return sizes
}

var _ telemetry.WorldView = View{}
