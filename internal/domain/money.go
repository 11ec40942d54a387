package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// PEN is the default currency for all sales.
var PEN = currency.MustParseISO("PEN")

// Money is an amount in a single currency. Arithmetic assumes both operands
// share the same currency; a cart never mixes currencies.
type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

func NewMoney(amount decimal.Decimal, unit currency.Unit) Money {
	return Money{Amount: amount, Currency: unit}
}

func ZeroMoney(unit currency.Unit) Money {
	return Money{Amount: decimal.Zero, Currency: unit}
}

func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

// MulInt multiplies the amount by a quantity, rounded to two fraction digits.
func (m Money) MulInt(n int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(n))).Round(2),
		Currency: m.Currency,
	}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) Equal(other Money) bool {
	return m.Amount.Equal(other.Amount) && m.Currency.String() == other.Currency.String()
}
