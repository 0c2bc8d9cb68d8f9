package core

import (
	"fmt"
	"testing"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestExpandSeriesElevenForwardMonths(t *testing.T) {
	anchor := Transaction{
		ID:        "anchor",
		Type:      ScheduledPayment,
		Label:     "Rent",
		Amount:    Money{Cents: 150000},
		Date:      NewDate(2024, 1, 15),
		Recurring: true,
	}
	siblings := ExpandSeries(anchor, sequentialIDs())
	if len(siblings) != SeriesLength-1 {
		t.Fatalf("got %d siblings, want %d", len(siblings), SeriesLength-1)
	}
	for i, s := range siblings {
		want := NewDate(2024, 2+i, 15)
		if !s.Date.Equal(want.Time) {
			t.Fatalf("sibling %d dated %s, want %s", i, s.Date, want)
		}
		if s.ID == anchor.ID || s.ID == "" {
			t.Fatalf("sibling %d id %q not fresh", i, s.ID)
		}
		if s.Label != anchor.Label || s.Amount != anchor.Amount || s.Type != anchor.Type || !s.Recurring {
			t.Fatalf("sibling %d diverged from anchor: %+v", i, s)
		}
	}
	last := siblings[len(siblings)-1]
	if !last.Date.Equal(NewDate(2024, 12, 15).Time) {
		t.Fatalf("last sibling dated %s, want 2024-12-15", last.Date)
	}
}

func TestExpandSeriesClampsMonthEnds(t *testing.T) {
	anchor := Transaction{
		ID: "a", Type: Expense, Label: "Lease",
		Amount: Money{Cents: 100}, Date: NewDate(2024, 1, 31), Recurring: true,
	}
	siblings := ExpandSeries(anchor, sequentialIDs())
	if d := siblings[0].Date; !d.Equal(NewDate(2024, 2, 29).Time) {
		t.Fatalf("february sibling dated %s, want 2024-02-29", d)
	}
	if d := siblings[2].Date; !d.Equal(NewDate(2024, 4, 30).Time) {
		t.Fatalf("april sibling dated %s, want 2024-04-30", d)
	}
}

func TestExpandSeriesNonRecurring(t *testing.T) {
	anchor := Transaction{ID: "a", Type: Expense, Label: "One-off", Date: NewDate(2024, 1, 1)}
	if got := ExpandSeries(anchor, sequentialIDs()); got != nil {
		t.Fatalf("non-recurring anchor expanded to %d records", len(got))
	}
}

func TestMatchesSeries(t *testing.T) {
	pivot := Transaction{Label: "Rent", Date: NewDate(2024, 6, 15), Recurring: true}
	cases := []struct {
		name      string
		candidate Transaction
		want      bool
	}{
		{"same label same date", Transaction{Label: "Rent", Date: NewDate(2024, 6, 15), Recurring: true}, true},
		{"same label later", Transaction{Label: "Rent", Date: NewDate(2024, 9, 15), Recurring: true}, true},
		{"same label earlier", Transaction{Label: "Rent", Date: NewDate(2024, 5, 15), Recurring: true}, false},
		{"different label", Transaction{Label: "Internet", Date: NewDate(2024, 7, 15), Recurring: true}, false},
		{"not recurring", Transaction{Label: "Rent", Date: NewDate(2024, 7, 15), Recurring: false}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesSeries(tc.candidate, pivot); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
