package lotfolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the currency of all amounts handled by the engine. The cash
// symbol represents a balance in this currency.
const Currency = "USD"

// Amount is a monetary value (a price, a total, a fee, a P/L figure) in the
// portfolio currency, held as an exact decimal in major units.
type Amount struct {
	value decimal.Decimal
}

// A builds an Amount from any numeric value.
func A[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// ParseAmount parses the canonical decimal string representation.
func ParseAmount(s string) (Amount, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: v}, nil
}

func (a Amount) Add(b Amount) Amount       { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount       { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount               { return Amount{value: a.value.Neg()} }
func (a Amount) Equal(b Amount) bool       { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool    { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool { return a.value.GreaterThan(b.value) }
func (a Amount) IsZero() bool              { return a.value.IsZero() }
func (a Amount) IsNegative() bool          { return a.value.IsNegative() }
func (a Amount) IsPositive() bool          { return a.value.IsPositive() }
func (a Amount) InexactFloat64() float64   { return a.value.InexactFloat64() }

// Mul scales the amount by a quantity (e.g. price × shares).
func (a Amount) Mul(q Quantity) Amount { return Amount{value: a.value.Mul(q.value)} }

// DivQ divides the amount by a quantity, yielding zero when the denominator
// is zero rather than failing: the unit cost of an empty position is zero.
func (a Amount) DivQ(q Quantity) Amount {
	if q.value.IsZero() {
		return Amount{}
	}
	return Amount{value: a.value.Div(q.value)}
}

// Units reinterprets the amount as a quantity. The cash position counts its
// balance as units at a cost price of one.
func (a Amount) Units() Quantity { return Quantity{value: a.value} }

// String formats the amount through the currency formatter (e.g. "$1,234.50").
func (a Amount) String() string {
	cur := money.GetCurrency(Currency)
	dec := a.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

// Plain returns the raw decimal representation, without currency formatting.
// This is the canonical form used for persistence.
func (a Amount) Plain() string { return a.value.String() }

// SignedString is like String with an explicit sign, and "-" for zero.
func (a Amount) SignedString() string {
	if a.value.IsZero() {
		return "-"
	}
	if a.value.IsPositive() {
		return "+" + a.String()
	}
	return a.String()
}

// MarshalJSON implements the json.Marshaler interface.
func (a Amount) MarshalJSON() ([]byte, error) { return a.value.MarshalJSON() }

// UnmarshalJSON implements the json.Unmarshaler interface.
func (a *Amount) UnmarshalJSON(b []byte) error { return a.value.UnmarshalJSON(b) }
