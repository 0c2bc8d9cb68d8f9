// Package scan extracts payment details from the QR payload of an
// uploaded receipt. It is a pure text parser: decoding the image or PDF
// into payload text happens behind the ledger.Scanner port.
package scan

import (
	"regexp"
	"strings"

	"monetra/internal/core"
)

var (
	ibanRe      = regexp.MustCompile(`\bCH\d{2}[0-9A-Z]{17}\b`)
	amountRe    = regexp.MustCompile(`\b\d+(?:[.,]\d{1,2})\b`)
	currencyRe  = regexp.MustCompile(`(?i)\b(CHF|EUR)\b`)
	referenceRe = regexp.MustCompile(`\b(?:RF\d{2}[0-9A-Z]{1,21}|\d{10,27})\b`)
)

// Amounts above this are treated as misreads (account numbers, dates).
const maxPlausibleAmount = 1_000_000

// QRInfo holds the fields recognized in a payment QR payload. Absent
// fields stay zero.
type QRInfo struct {
	IBAN      string `json:"iban,omitempty"`
	Payee     string `json:"payee,omitempty"`
	Amount    Amount `json:"amount"`
	Currency  string `json:"currency,omitempty"`
	Reference string `json:"reference,omitempty"`
	ExtraInfo string `json:"extra_info,omitempty"`
}

// Amount pairs the parsed money value with whether one was found.
type Amount struct {
	Value core.Money `json:"value"`
	Found bool       `json:"found"`
}

// Suggestion is a pre-filled transaction draft offered to the client.
// It is never persisted server-side.
type Suggestion struct {
	Type      core.TransactionType `json:"type"`
	Label     string               `json:"label"`
	Amount    core.Money           `json:"amount"`
	Currency  string               `json:"currency"`
	Category  string               `json:"category"`
	Date      core.Date            `json:"date"`
	Recurring bool                 `json:"recurring"`
	IBAN      string               `json:"iban,omitempty"`
	Reference string               `json:"reference,omitempty"`
}

// ParsePayload runs the field heuristics over a QR payload.
func ParsePayload(payload string) QRInfo {
	var info QRInfo
	if strings.TrimSpace(payload) == "" {
		return info
	}

	var lines []string
	for _, l := range strings.Split(payload, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	compact := strings.ReplaceAll(payload, " ", "")
	if m := ibanRe.FindString(compact); m != "" {
		info.IBAN = m
	}
	if m := currencyRe.FindString(payload); m != "" {
		info.Currency = strings.ToUpper(m)
	}
	// First amount in a plausible payment range wins.
	for _, a := range amountRe.FindAllString(payload, -1) {
		cents, err := core.ParseDecimalToCents(a)
		if err != nil {
			continue
		}
		if cents > 0 && cents <= maxPlausibleAmount*100 {
			info.Amount = Amount{Value: core.Money{Cents: cents}, Found: true}
			break
		}
	}
	if m := referenceRe.FindString(compact); m != "" {
		info.Reference = m
	}

	// Payee: first line that is neither an IBAN nor a currency marker.
	for _, l := range lines {
		if len(l) < 3 {
			continue
		}
		if ibanRe.MatchString(strings.ReplaceAll(l, " ", "")) || currencyRe.MatchString(l) {
			continue
		}
		info.Payee = l
		break
	}

	if len(lines) >= 2 {
		info.ExtraInfo = strings.Join(lines[len(lines)-2:], " / ")
	}

	return info
}

// BuildSuggestion turns parsed QR fields into a payment draft dated
// today. Missing fields fall back to neutral defaults.
func BuildSuggestion(info QRInfo, today core.Date) Suggestion {
	label := info.Payee
	if label == "" {
		label = info.ExtraInfo
	}
	if label == "" {
		label = "Invoice"
	}
	if len(label) > 80 {
		label = label[:80]
	}

	currency := info.Currency
	if currency == "" {
		currency = "CHF"
	}

	return Suggestion{
		Type:      core.ScheduledPayment,
		Label:     label,
		Amount:    info.Amount.Value,
		Currency:  currency,
		Category:  "Bills",
		Date:      today,
		Recurring: false,
		IBAN:      info.IBAN,
		Reference: info.Reference,
	}
}
