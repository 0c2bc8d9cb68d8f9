package core

import "testing"

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		name string
		in   Date
		n    int
		want Date
	}{
		{"leap february", NewDate(2024, 1, 31), 1, NewDate(2024, 2, 29)},
		{"non-leap february", NewDate(2023, 1, 31), 1, NewDate(2023, 2, 28)},
		{"thirty day month", NewDate(2024, 5, 31), 1, NewDate(2024, 6, 30)},
		{"plain mid-month", NewDate(2024, 1, 15), 1, NewDate(2024, 2, 15)},
		{"year rollover", NewDate(2024, 11, 15), 2, NewDate(2025, 1, 15)},
		{"eleven forward", NewDate(2024, 1, 15), 11, NewDate(2024, 12, 15)},
		{"zero months", NewDate(2024, 3, 31), 0, NewDate(2024, 3, 31)},
		{"century non-leap", NewDate(2100, 1, 31), 1, NewDate(2100, 2, 28)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddMonths(tc.in, tc.n)
			if !got.Equal(tc.want.Time) {
				t.Fatalf("AddMonths(%s, %d) = %s, want %s", tc.in, tc.n, got, tc.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	cases := []struct {
		year, month, want int
	}{
		{2024, 2, 29},
		{2023, 2, 28},
		{2000, 2, 29},
		{1900, 2, 28},
		{2024, 4, 30},
		{2024, 12, 31},
	}
	for _, tc := range cases {
		if got := DaysInMonth(tc.year, tc.month); got != tc.want {
			t.Fatalf("DaysInMonth(%d, %d) = %d, want %d", tc.year, tc.month, got, tc.want)
		}
	}
}
