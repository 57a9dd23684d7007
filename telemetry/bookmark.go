package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/reef/components"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCoverCrash    BookmarkType = "cover_crash"
	BookmarkMassMortality BookmarkType = "mass_mortality"
	BookmarkFormLost      BookmarkType = "form_lost"
	BookmarkSteadyReef    BookmarkType = "steady_reef"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}


// LogValue implements slog.LogValuer for structured logging.
func (b Bookmark) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("type", string(b.Type)),
		slog.Int("tick", b.Tick),
		slog.String("description", b.Description),
	)
}

// BookmarkDetector detects notable moments in reef development.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	coverPeak         float64
	steadyWindowCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if prev, ok := bd.last(); ok {
		if b := bd.checkCoverCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := checkMassMortality(prev, stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		bookmarks = append(bookmarks, checkFormLost(prev, stats)...)
		if b := bd.checkSteadyReef(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.TotalCover > bd.coverPeak {
		bd.coverPeak = stats.TotalCover
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) last() (WindowStats, bool) {
	if !bd.historyFull && bd.historyIdx == 0 {
		return WindowStats{}, false
	}
	return bd.history[(bd.historyIdx-1+bd.historySize)%bd.historySize], true
}

// recent returns up to k most recent windows, oldest first.
func (bd *BookmarkDetector) recent(k int) []WindowStats {
	n := bd.historyIdx
	if bd.historyFull {
		n = bd.historySize
	}
	k = min(k, n)
	out := make([]WindowStats, 0, k)
	for i := k; i > 0; i-- {
		out = append(out, bd.history[(bd.historyIdx-i+bd.historySize)%bd.historySize])
	}
	return out
}

func (bd *BookmarkDetector) checkCoverCrash(stats WindowStats) *Bookmark {
	if bd.coverPeak < 1 {
		return nil
	}
	drop := 1 - stats.TotalCover/bd.coverPeak
	if drop <= 0.30 {
		return nil
	}
	oldPeak := bd.coverPeak
	bd.coverPeak = stats.TotalCover
	return &Bookmark{
		Type:        BookmarkCoverCrash,
		Tick:        stats.WindowEnd,
		Description: fmt.Sprintf("Cover fell %.0f%% from peak %.1f%% to %.1f%%", drop*100, oldPeak, stats.TotalCover),
	}
}

func checkMassMortality(prev, stats WindowStats) *Bookmark {
	deaths := stats.Deaths()
	if deaths < 5 || prev.LiveColonies == 0 {
		return nil
	}
	frac := float64(deaths) / float64(prev.LiveColonies)
	if frac < 0.25 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkMassMortality,
		Tick:        stats.WindowEnd,
		Description: fmt.Sprintf("%d of %d colonies died (%d disturbance)", deaths, prev.LiveColonies, stats.DisturbanceDeaths),
	}
}

func checkFormLost(prev, stats WindowStats) []Bookmark {
	var out []Bookmark
	for _, f := range components.AllForms() {
		if prev.FormCells[f] > 0 && stats.FormCells[f] == 0 {
			out = append(out, Bookmark{
				Type:        BookmarkFormLost,
				Tick:        stats.WindowEnd,
				Description: fmt.Sprintf("No living %s tissue remains", f),
			})
		}
	}
	return out
}

func (bd *BookmarkDetector) checkSteadyReef(stats WindowStats) *Bookmark {
	if stats.TotalCover < 5 {
		bd.steadyWindowCount = 0
		return nil
	}
	window := bd.recent(4)
	if len(window) < 4 {
		return nil
	}

	var sum float64
	for _, h := range window {
		sum += h.TotalCover
	}
	mean := sum / float64(len(window))
	var variance float64
	for _, h := range window {
		d := h.TotalCover - mean
		variance += d * d
	}
	variance /= float64(len(window))

	// CV^2 < 0.01 means CV < 0.1
	if mean > 0 && variance/(mean*mean) < 0.01 {
		bd.steadyWindowCount++
	} else {
		bd.steadyWindowCount = 0
	}

	if bd.steadyWindowCount == 5 {
		return &Bookmark{
			Type:        BookmarkSteadyReef,
			Tick:        stats.WindowEnd,
			Description: fmt.Sprintf("Cover steady near %.1f%% over 5+ windows", mean),
		}
	}
	return nil
}
