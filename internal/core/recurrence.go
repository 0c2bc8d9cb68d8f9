package core

// SeriesLength is the number of occurrences in a recurring series,
// anchor included: the anchor month plus eleven forward months.
const SeriesLength = 12

// ExpandSeries generates the forward siblings of a recurring anchor:
// one copy per month for the eleven months after the anchor date, each
// with a fresh id from nextID and the day clamped by AddMonths. The
// anchor itself is not part of the result. Non-recurring anchors
// expand to nothing.
func ExpandSeries(anchor Transaction, nextID func() string) []Transaction {
	if !anchor.Recurring {
		return nil
	}
	siblings := make([]Transaction, 0, SeriesLength-1)
	for i := 1; i < SeriesLength; i++ {
		s := anchor
		s.ID = nextID()
		s.Date = AddMonths(anchor.Date, i)
		siblings = append(siblings, s)
	}
	return siblings
}

// MatchesSeries reports whether candidate belongs to the series pivoted
// at pivot: it must be recurring, share the pivot's label, and fall on
// or after the pivot's date. Membership is label-based, so two distinct
// recurring series with the same label are indistinguishable; callers
// accept that collision.
func MatchesSeries(candidate, pivot Transaction) bool {
	return candidate.Recurring &&
		candidate.Label == pivot.Label &&
		!candidate.Date.Before(pivot.Date)
}
