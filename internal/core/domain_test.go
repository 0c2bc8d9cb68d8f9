package core

import (
	"encoding/json"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:     "t1",
		Type:   Expense,
		Label:  "Groceries",
		Amount: Money{Cents: 4500},
		Date:   NewDate(2025, 1, 15),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "loan", Label: "a", Date: NewDate(2025, 1, 1)},
		{Type: Expense, Label: "   ", Date: NewDate(2025, 1, 1)},
		{Type: Expense, Label: "a", Date: Date{}},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionTypeIsValid(t *testing.T) {
	for _, tt := range []TransactionType{Income, Expense, ScheduledPayment, Savings} {
		if !tt.IsValid() {
			t.Fatalf("%q should be valid", tt)
		}
	}
	if TransactionType("transfer").IsValid() {
		t.Fatalf("unknown type should be invalid")
	}
}

func TestCategoryOrDefault(t *testing.T) {
	if got := (Transaction{Category: "Rent"}).CategoryOrDefault(); got != "Rent" {
		t.Fatalf("got %q", got)
	}
	if got := (Transaction{Category: "  "}).CategoryOrDefault(); got != DefaultCategory {
		t.Fatalf("got %q, want %q", got, DefaultCategory)
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil || d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("got %v err=%v", d, err)
	}
	for _, bad := range []string{"", "2024-13-01", "29.02.2024", "2024-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2025-07")
	if err != nil || y != 2025 || m != 7 {
		t.Fatalf("got %d-%d err=%v", y, m, err)
	}
	for _, bad := range []string{"", "2025", "2025-13", "07-2025"} {
		if _, _, err := ParseMonth(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestDateDaysUntil(t *testing.T) {
	today := NewDate(2025, 6, 10)
	if got := NewDate(2025, 6, 15).DaysUntil(today); got != 5 {
		t.Fatalf("got %d, want 5", got)
	}
	if got := NewDate(2025, 6, 8).DaysUntil(today); got != -2 {
		t.Fatalf("got %d, want -2", got)
	}
}

func TestTransactionJSON(t *testing.T) {
	tr := Transaction{
		ID:        "abc",
		Type:      ScheduledPayment,
		Label:     "Insurance",
		Amount:    Money{Cents: 9990},
		Date:      NewDate(2025, 3, 1),
		Recurring: true,
	}
	b, err := json.Marshal(tr)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != tr {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, tr)
	}
}
