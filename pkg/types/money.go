package types

import (
	"github.com/shopspring/decimal"
)

// Money is a currency-agnostic amount rendered as a two-decimal JSON number.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromFloat(f float64) Money {
	return Money{Decimal: decimal.NewFromFloat(f)}
}

// MoneyFromCents builds an amount from an integer number of minor units.
func MoneyFromCents(cents int64) Money {
	return Money{Decimal: decimal.NewFromInt(cents).Shift(-2)}
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		m.Decimal = decimal.Zero
		return nil
	}
	return m.Decimal.UnmarshalJSON(data)
}

// Cents returns the amount in minor units, rounded half away from zero.
func (m Money) Cents() int64 {
	return m.Shift(2).Round(0).IntPart()
}
