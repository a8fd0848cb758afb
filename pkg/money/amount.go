package money

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount
const CurrencySymbol = "R$"

// DateLayout is the display layout for calendar dates (day/month/year)
const DateLayout = "02/01/2006"

// Format renders an amount as Brazilian real: "R$ 1.234,56", "-R$ 10,00".
func Format(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.IsNegative() && !amount.Round(2).IsZero() {
		b.WriteString("-")
	}
	b.WriteString(CurrencySymbol)
	b.WriteString(" ")
	b.WriteString(groupThousands(intPart))
	b.WriteString(",")
	b.WriteString(fracPart)
	return b.String()
}

// FormatDate renders a calendar date as dd/mm/yyyy in UTC.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	head := len(digits) % 3
	if head == 0 {
		head = 3
	}

	var b strings.Builder
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(".")
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
