package domain

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return base.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     time.Time
		want                           bool
	}{
		{"partial overlap", at(0), at(2), at(1), at(3), true},
		{"identical intervals", at(0), at(2), at(0), at(2), true},
		{"a contains b", at(0), at(4), at(1), at(2), true},
		{"b contains a", at(1), at(2), at(0), at(4), true},
		{"touching at boundary", at(0), at(2), at(2), at(4), true},
		{"touching at boundary reversed", at(2), at(4), at(0), at(2), true},
		{"disjoint", at(0), at(1), at(2), at(3), false},
		{"disjoint by one minute", at(0), at(2), at(2).Add(time.Minute), at(4), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd)
			if got != tt.want {
				t.Fatalf("Overlaps(%v, %v, %v, %v) = %v, want %v",
					tt.aStart, tt.aEnd, tt.bStart, tt.bEnd, got, tt.want)
			}
			// The relation is symmetric; both orders must agree.
			if sym := Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd); sym != got {
				t.Fatalf("Overlaps not symmetric: a-b = %v, b-a = %v", got, sym)
			}
		})
	}
}

func TestIntervalOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	a := Interval{Start: base, End: base.Add(2 * time.Hour)}
	b := Interval{Start: base.Add(2 * time.Hour), End: base.Add(4 * time.Hour)}
	if !a.Overlaps(b) {
		t.Fatalf("boundary-touching intervals must overlap")
	}

	c := Interval{Start: base.Add(2*time.Hour + time.Minute), End: base.Add(4 * time.Hour)}
	if a.Overlaps(c) {
		t.Fatalf("disjoint intervals must not overlap")
	}
}
