package ui

import "testing"

func TestTicksThisFrame(t *testing.T) {
	tests := []struct {
		name string
		c    Controls
		want int
	}{
		{"running", Controls{Speed: 3}, 3},
		{"rounded", Controls{Speed: 3.6}, 4},
		{"below min", Controls{Speed: 0}, MinSpeed},
		{"above max", Controls{Speed: 500}, MaxSpeed},
		{"paused", Controls{Paused: true, Speed: 10}, 0},
		{"paused step", Controls{Paused: true, StepOnce: true, Speed: 10}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.TicksThisFrame(); got != tt.want {
				t.Errorf("TicksThisFrame() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTail(t *testing.T) {
	lines := []string{"a", "b", "c"}
	if got := Tail(lines, 2); len(got) != 2 || got[0] != "b" {
		t.Errorf("Tail(2) = %v", got)
	}
	if got := Tail(lines, 5); len(got) != 3 {
		t.Errorf("Tail(5) = %v", got)
	}
	if got := Tail(lines, 0); got != nil {
		t.Errorf("Tail(0) = %v", got)
	}
}

func TestYearLabel(t *testing.T) {
	tests := []struct {
		data HUDData
		want string
	}{
		{HUDData{Tick: 104, TicksPerYear: 52, RunYears: 100}, "2.0/100"},
		{HUDData{Tick: 26, TicksPerYear: 52}, "0.5"},
		{HUDData{Tick: 26}, "0.0"},
	}
	for _, tt := range tests {
		if got := tt.data.YearLabel(); got != tt.want {
			t.Errorf("YearLabel(%+v) = %q, want %q", tt.data, got, tt.want)
		}
	}
}
