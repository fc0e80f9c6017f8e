package booking

import (
	"testing"
	"time"
)

func iv(startHour, startMin, endHour, endMin int) Interval {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return Interval{
		Start: day.Add(time.Duration(startHour)*time.Hour + time.Duration(startMin)*time.Minute),
		End:   day.Add(time.Duration(endHour)*time.Hour + time.Duration(endMin)*time.Minute),
	}
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", iv(9, 0, 10, 0), iv(9, 0, 10, 0), true},
		{"contained", iv(9, 0, 12, 0), iv(10, 0, 11, 0), true},
		{"partial left", iv(9, 0, 10, 0), iv(9, 30, 10, 30), true},
		{"partial right", iv(9, 30, 10, 30), iv(9, 0, 10, 0), true},
		{"abutting", iv(9, 0, 10, 0), iv(10, 0, 11, 0), false},
		{"abutting reversed", iv(10, 0, 11, 0), iv(9, 0, 10, 0), false},
		{"disjoint", iv(9, 0, 10, 0), iv(14, 0, 15, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("overlap is not symmetric for %v, %v", tt.a, tt.b)
			}
		})
	}
}

func TestOverlapsAny(t *testing.T) {
	busy := []Interval{iv(9, 0, 10, 0), iv(13, 0, 14, 30)}

	if !OverlapsAny(iv(9, 30, 10, 30), busy) {
		t.Fatal("expected overlap with first busy interval")
	}
	if OverlapsAny(iv(10, 0, 11, 0), busy) {
		t.Fatal("abutting interval must not count as overlap")
	}
	if OverlapsAny(iv(15, 0, 16, 0), nil) {
		t.Fatal("no busy intervals, no overlap")
	}
}

func TestWindowContains(t *testing.T) {
	window := iv(9, 0, 17, 0)

	// Request exactly at opening is accepted.
	if !window.Contains(iv(9, 0, 10, 0)) {
		t.Fatal("appointment at opening time must fit")
	}

	// Request exactly at closing is rejected (half-open window).
	if window.Contains(iv(17, 0, 18, 0)) {
		t.Fatal("appointment at closing time must not fit")
	}

	// Last slot that still ends at closing is accepted.
	if !window.Contains(iv(16, 0, 17, 0)) {
		t.Fatal("appointment ending at closing time must fit")
	}

	// Appointment running past closing is rejected.
	if window.Contains(iv(16, 30, 17, 30)) {
		t.Fatal("appointment running past closing must not fit")
	}

	if window.Contains(iv(8, 0, 9, 0)) {
		t.Fatal("appointment before opening must not fit")
	}
}
