package domain

import "time"

// Interval is a closed time interval [Start, End]. Both endpoints belong to
// the interval, so back-to-back intervals sharing an endpoint overlap.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether the closed intervals [aStart, aEnd] and
// [bStart, bEnd] intersect. Callers must pass ordered endpoints
// (start <= end); the function does not re-check that precondition.
//
// The test is spelled as three clauses rather than the equivalent
// aStart <= bEnd && bStart <= aEnd so that the inclusive-boundary policy is
// explicit: either endpoint of A landing inside B counts, and so does B being
// swallowed whole by A. There is no grace gap between adjacent reservations.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if within(aStart, bStart, bEnd) {
		return true
	}
	if within(aEnd, bStart, bEnd) {
		return true
	}
	// B fully contained in A.
	return !bStart.Before(aStart) && !bEnd.After(aEnd)
}

// within reports start <= t <= end.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Overlaps reports whether i intersects other under the same closed-interval
// policy as the package-level function.
func (i Interval) Overlaps(other Interval) bool {
	return Overlaps(i.Start, i.End, other.Start, other.End)
}
