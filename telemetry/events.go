// Package telemetry provides reef metrics, the event log, bookmarks, and CSV output.
package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/reef/components"
)

// EventType identifies telemetry events.
type EventType uint8

const (
	EventRecruit EventType = iota
	EventDeath
	EventDisturbance
	EventSedimentation
)

// String returns the event type name used in CSV output.
func (t EventType) String() string {
	switch t {
	case EventRecruit:
		return "recruit"
	case EventDeath:
		return "death"
	case EventDisturbance:
		return "disturbance"
	case EventSedimentation:
		return "sedimentation"
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Event represents a single telemetry event.
type Event struct {
	Type EventType
	Tick int

	// Colony-scoped events
	ColonyID uint32
	Form     components.GrowthForm
	Cause    components.DeathCause
	Cells    int // tissue size at death

	// Aggregate events
	Count     int     // recruits settled, colonies killed, or colonies reclaimed
	Severity  string  // disturbance regime
	Magnitude float64 // disturbance threshold
}

// NewRecruitEvent records a recruitment round that settled count colonies.
func NewRecruitEvent(tick, count int) Event {
	return Event{Type: EventRecruit, Tick: tick, Count: count}
}

// NewDeathEvent records the death of one colony.
func NewDeathEvent(tick int, id uint32, form components.GrowthForm, cause components.DeathCause, cells int) Event {
	return Event{
		Type:     EventDeath,
		Tick:     tick,
		ColonyID: id,
		Form:     form,
		Cause:    cause,
		Cells:    cells,
	}
}

// NewDisturbanceEvent records a disturbance with its kill count.
func NewDisturbanceEvent(tick int, severity string, magnitude float64, kills int) Event {
	return Event{
		Type:      EventDisturbance,
		Tick:      tick,
		Severity:  severity,
		Magnitude: magnitude,
		Count:     kills,
	}
}

// NewSedimentationEvent records reclamation of count dead colonies.
func NewSedimentationEvent(tick, count int) Event {
	return Event{Type: EventSedimentation, Tick: tick, Count: count}
}

// String renders the event as a human-readable log line.
func (e Event) String() string {
	switch e.Type {
	case EventRecruit:
		return fmt.Sprintf("t=%d %d new recruits settled", e.Tick, e.Count)
	case EventDeath:
		return fmt.Sprintf("t=%d colony %d (%s, %d cells) died of %s", e.Tick, e.ColonyID, e.Form, e.Cells, e.Cause)
	case EventDisturbance:
		return fmt.Sprintf("t=%d %s disturbance of magnitude %.2f killed %d colonies", e.Tick, e.Severity, e.Magnitude, e.Count)
	case EventSedimentation:
		return fmt.Sprintf("t=%d sedimentation reclaimed %d dead colonies", e.Tick, e.Count)
	}
	return fmt.Sprintf("t=%d %s", e.Tick, e.Type)
}

// EventCSV is a flat struct for CSV export of events.
type EventCSV struct {
	Tick      int     `csv:"tick"`
	Type      string  `csv:"type"`
	ColonyID  uint32  `csv:"colony"`
	Form      string  `csv:"form"`
	Cause     string  `csv:"cause"`
	Cells     int     `csv:"cells"`
	Count     int     `csv:"count"`
	Severity  string  `csv:"severity"`
	Magnitude float64 `csv:"magnitude"`
}

// ToCSV converts an Event to its CSV row.
func (e Event) ToCSV() EventCSV {
	row := EventCSV{
		Tick:      e.Tick,
		Type:      e.Type.String(),
		Count:     e.Count,
		Severity:  e.Severity,
		Magnitude: e.Magnitude,
	}
	if e.Type == EventDeath {
		row.ColonyID = e.ColonyID
		row.Form = e.Form.String()
		row.Cause = e.Cause.String()
		row.Cells = e.Cells
	}
	return row
}

// LogValue implements slog.LogValuer for structured logging.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("type", e.Type.String()),
		slog.Int("tick", e.Tick),
	}
	switch e.Type {
	case EventDeath:
		attrs = append(attrs,
			slog.Any("colony", e.ColonyID),
			slog.String("form", e.Form.String()),
			slog.String("cause", e.Cause.String()),
			slog.Int("cells", e.Cells),
		)
	case EventDisturbance:
		attrs = append(attrs,
			slog.String("severity", e.Severity),
			slog.Float64("magnitude", e.Magnitude),
			slog.Int("count", e.Count),
		)
	default:
		attrs = append(attrs, slog.Int("count", e.Count))
	}
	return slog.GroupValue(attrs...)
}
