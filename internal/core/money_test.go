package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"0", 0, true},
		{"1.005", 101, true}, // half-up rounding
		{"1.004", 100, true},
		{" 2.50 ", 250, true},
		{"1'234.50", 123450, true},
		{"1 234,50", 123450, true},
		{"-1", -100, true},
		{"+1", 100, true},
		{"-12.345", -1235, true}, // half-up away from zero
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"-", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestNormalizeAmountEquivalentForms(t *testing.T) {
	// All representations of the same value must land on identical cents.
	want := int64(14045)
	for _, v := range []any{"140,45", "140.45", float64(140.45)} {
		if got := NormalizeAmount(v); got.Cents != want {
			t.Fatalf("NormalizeAmount(%v) = %d cents, want %d", v, got.Cents, want)
		}
	}
	if got := NormalizeAmount(140); got.Cents != 14000 {
		t.Fatalf("NormalizeAmount(140) = %d cents, want 14000", got.Cents)
	}
}

func TestNormalizeAmountGarbageIsZero(t *testing.T) {
	for _, v := range []any{nil, "", "abc", true, []string{"x"}, "1.2.3", "-"} {
		if got := NormalizeAmount(v); got.Cents != 0 {
			t.Fatalf("NormalizeAmount(%v) = %d cents, want 0", v, got.Cents)
		}
	}
}

func TestNormalizeAmountNegatives(t *testing.T) {
	// Every input form of -5 must land on the same cents.
	for _, v := range []any{"-5", "-5,00", float64(-5), int(-5), int64(-5)} {
		if got := NormalizeAmount(v); got.Cents != -500 {
			t.Fatalf("NormalizeAmount(%v) = %d cents, want -500", v, got.Cents)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	m := Money{Cents: 14045}
	b, err := m.MarshalJSON()
	if err != nil || string(b) != "140.45" {
		t.Fatalf("marshal: got %q err=%v", b, err)
	}
	var back Money
	if err := back.UnmarshalJSON(b); err != nil || back.Cents != 14045 {
		t.Fatalf("unmarshal: got %d err=%v", back.Cents, err)
	}
	// String amounts decode too.
	var fromString Money
	if err := fromString.UnmarshalJSON([]byte(`"140,45"`)); err != nil || fromString.Cents != 14045 {
		t.Fatalf("unmarshal string: got %d err=%v", fromString.Cents, err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 150}
	b := Money{Cents: 70}
	if got := a.Add(b); got.Cents != 220 {
		t.Fatalf("Add = %d, want 220", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 80 {
		t.Fatalf("Sub = %d, want 80", got.Cents)
	}
	if s := (Money{Cents: 500}).String(); s != "5.00" {
		t.Fatalf("String = %q, want 5.00", s)
	}
}
