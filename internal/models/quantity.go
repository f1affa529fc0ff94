package models

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance, in base units, used when comparing or
// zero-checking converted amounts
const Epsilon = 1e-9

// Quantity is a non-negative amount of some unit
type Quantity struct {
	amount float64
	unit   Unit
}

// NewQuantity validates and builds a quantity
func NewQuantity(amount float64, unit Unit) (Quantity, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Quantity{}, &ValidationError{Field: "amount", Reason: "must be a finite number"}
	}
	if amount < 0 {
		return Quantity{}, &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if !unit.Valid() {
		return Quantity{}, &ValidationError{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", unit)}
	}
	return Quantity{amount: amount, unit: unit}, nil
}

// MustQuantity is like NewQuantity but panics on invalid input
func MustQuantity(amount float64, unit Unit) Quantity {
	q, err := NewQuantity(amount, unit)
	if err != nil {
		panic(fmt.Sprintf("invalid quantity: %v", err))
	}
	return q
}

// Amount returns the amount in the quantity's own unit
func (q Quantity) Amount() float64 {
	return q.amount
}

// Unit returns the unit of the quantity
func (q Quantity) Unit() Unit {
	return q.unit
}

// Base returns the amount converted into the category's base unit
func (q Quantity) Base() float64 {
	return q.unit.ToBase(q.amount)
}

// IsZero reports whether the amount is zero within Epsilon
func (q Quantity) IsZero() bool {
	return q.Base() <= Epsilon
}

// Equal compares amount and unit exactly; 1 kg is not equal to 1000 g
func (q Quantity) Equal(other Quantity) bool {
	return q.amount == other.amount && q.unit == other.unit
}

// String renders the quantity as "amount unit" without trailing zeros
func (q Quantity) String() string {
	return FormatAmount(q.amount) + " " + string(q.unit)
}

// FormatAmount renders an amount in its shortest decimal form
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

type quantityJSON struct {
	Amount float64 `json:"amount"`
	Unit   Unit    `json:"unit"`
}

// MarshalJSON implements json.Marshaler
func (q Quantity) MarshalJSON() ([]byte, error) {
	return json.Marshal(quantityJSON{Amount: q.amount, Unit: q.unit})
}

// UnmarshalJSON implements json.Unmarshaler and re-validates the value
func (q *Quantity) UnmarshalJSON(data []byte) error {
	var raw quantityJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewQuantity(raw.Amount, raw.Unit)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
