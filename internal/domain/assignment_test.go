package domain

import (
	"testing"
	"time"
)

func TestAssignmentActiveAt(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	t.Run("indefinite assignment is active at any instant after start", func(t *testing.T) {
		a := Assignment{StartDate: start}
		for _, at := range []time.Time{start, start.Add(time.Hour), start.AddDate(10, 0, 0)} {
			if !a.ActiveAt(at) {
				t.Fatalf("ActiveAt(%v) = false, want true", at)
			}
		}
	})

	t.Run("inactive before start", func(t *testing.T) {
		a := Assignment{StartDate: start}
		if a.ActiveAt(start.Add(-time.Second)) {
			t.Fatalf("assignment active before its start date")
		}
	})

	t.Run("bounded assignment lapses at its end date", func(t *testing.T) {
		a := Assignment{StartDate: start, EndDate: &end}
		if !a.ActiveAt(end.Add(-time.Second)) {
			t.Fatalf("assignment inactive just before its end date")
		}
		if a.ActiveAt(end) {
			t.Fatalf("assignment still active at its end date")
		}
		if a.ActiveAt(end.Add(time.Hour)) {
			t.Fatalf("assignment still active after its end date")
		}
	})
}
