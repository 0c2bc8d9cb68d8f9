package core

import "sort"

// UpcomingPayment is one scheduled payment due today or later.
type UpcomingPayment struct {
	Label     string `json:"label"`
	Date      Date   `json:"date"`
	DaysUntil int    `json:"days_until"`
	Amount    Money  `json:"amount"`
}

// UpcomingSummary lists pending scheduled payments and their total.
type UpcomingSummary struct {
	Total    Money             `json:"total"`
	Payments []UpcomingPayment `json:"payments"`
}

// MonthlyReport aggregates one calendar month by type and category.
type MonthlyReport struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Income     Money            `json:"income"`
	Expenses   Money            `json:"expenses"`
	Payments   Money            `json:"scheduled_payments"`
	Savings    Money            `json:"savings"`
	Count      int              `json:"transaction_count"`
	Categories map[string]Money `json:"categories"`
}

// AvailableBalance sums every transaction dated on or before today.
// Income adds; expenses, scheduled payments and savings all subtract.
func AvailableBalance(transactions []Transaction, today Date) Money {
	var balance Money
	for _, t := range transactions {
		if t.Date.After(today) {
			continue
		}
		if t.Type == Income {
			balance = balance.Add(t.Amount)
		} else {
			balance = balance.Sub(t.Amount)
		}
	}
	return balance
}

// Upcoming collects scheduled payments dated today or later, sorted by
// days until due (ties keep input order), with their running total.
func Upcoming(transactions []Transaction, today Date) UpcomingSummary {
	summary := UpcomingSummary{Payments: []UpcomingPayment{}}
	for _, t := range transactions {
		if t.Type != ScheduledPayment || t.Date.Before(today) {
			continue
		}
		summary.Payments = append(summary.Payments, UpcomingPayment{
			Label:     t.Label,
			Date:      t.Date,
			DaysUntil: t.Date.DaysUntil(today),
			Amount:    t.Amount,
		})
		summary.Total = summary.Total.Add(t.Amount)
	}
	sort.SliceStable(summary.Payments, func(i, j int) bool {
		return summary.Payments[i].DaysUntil < summary.Payments[j].DaysUntil
	})
	return summary
}

// Report aggregates the transactions of one calendar month: per-type
// sums, a transaction count, and per-category totals with missing
// categories bucketed under DefaultCategory.
func Report(transactions []Transaction, year, month int) MonthlyReport {
	report := MonthlyReport{
		Year:       year,
		Month:      month,
		Categories: map[string]Money{},
	}
	for _, t := range transactions {
		if !t.Date.InMonth(year, month) {
			continue
		}
		report.Count++
		switch t.Type {
		case Income:
			report.Income = report.Income.Add(t.Amount)
		case Expense:
			report.Expenses = report.Expenses.Add(t.Amount)
		case ScheduledPayment:
			report.Payments = report.Payments.Add(t.Amount)
		case Savings:
			report.Savings = report.Savings.Add(t.Amount)
		}
		cat := t.CategoryOrDefault()
		report.Categories[cat] = report.Categories[cat].Add(t.Amount)
	}
	return report
}
