package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income           TransactionType = "income"
	Expense          TransactionType = "expense"
	ScheduledPayment TransactionType = "scheduled-payment"
	Savings          TransactionType = "savings"
)

// DefaultCategory is assigned when a transaction carries no category.
const DefaultCategory = "Other"

type (
	// TransactionType is the closed set of movement kinds. The type drives
	// the sign of balance contributions and the monthly report buckets.
	TransactionType string

	// Date is a calendar day; the time-of-day portion is always midnight UTC.
	Date struct {
		time.Time
	}

	// Transaction is a single dated monetary movement. A recurring
	// transaction is the anchor of a monthly series; its generated
	// siblings share label and type but carry their own ids and remain
	// independently editable.
	Transaction struct {
		ID        string          `json:"id"`
		Type      TransactionType `json:"type"`
		Label     string          `json:"label"`
		Amount    Money           `json:"amount"`
		Date      Date            `json:"date"`
		Category  string          `json:"category,omitempty"`
		Recurring bool            `json:"recurring"`
		ReceiptID string          `json:"receipt_id,omitempty"`
	}
)

var (
	ErrNotFound      = errors.New("transaction not found")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyLabel    = errors.New("empty label")
)

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar day in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

// ParseMonth parses a YYYY-MM filter string into year and month.
func ParseMonth(s string) (year int, month int, err error) {
	t, perr := time.Parse("2006-01", strings.TrimSpace(s))
	if perr != nil {
		return 0, 0, ErrInvalidMonth
	}
	return t.Year(), int(t.Month()), nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// DaysUntil returns the whole days from `from` to d, negative when d is past.
func (d Date) DaysUntil(from Date) int {
	return int(d.Time.Sub(from.Time) / (24 * time.Hour))
}

// InMonth reports whether the date falls in the given calendar month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// IsValid reports whether t is one of the four known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, ScheduledPayment, Savings:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if len(strings.TrimSpace(t.Label)) == 0 {
		return ErrEmptyLabel
	}
	if len(t.Label) > 200 {
		return errors.New("label too long (max 200 characters)")
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// CategoryOrDefault returns the category, falling back to DefaultCategory.
func (t Transaction) CategoryOrDefault() string {
	if strings.TrimSpace(t.Category) == "" {
		return DefaultCategory
	}
	return t.Category
}
