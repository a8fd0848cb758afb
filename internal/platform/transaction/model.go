package transaction

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the direction of a transaction
type Type string

const (
	TypeIncome  Type = "INCOME"
	TypeExpense Type = "EXPENSE"
)

// IsValid checks if the type is known
func (t Type) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Category is the display reference attached to a transaction
type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Transaction is a financial record as returned by the finance API.
// Values are treated as immutable once fetched.
type Transaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Type        Type            `json:"type"`
	Category    Category        `json:"category"`
}

// IsIncome reports whether the transaction adds money
func (t Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// Period is the (year, month) scope of a list fetch
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// PeriodOf returns the period containing t
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

// Validate checks month is within 1..12 and year is positive
func (p Period) Validate() error {
	if p.Year < 1 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
	}
	return nil
}

// IsZero reports whether the period was never set
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// dateLayouts are the wire formats accepted for Date, most specific last
var dateLayouts = []string{"2006-01-02", time.RFC3339Nano}

// Date is a calendar date. It decodes from "2006-01-02" or an RFC 3339
// timestamp and always encodes as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate builds a Date at midnight UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		d.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}

	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

// MarshalJSON implements json.Marshaler
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}
