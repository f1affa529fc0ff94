package models

import (
	"fmt"
	"strings"
)

// UnitCategory groups units that can be converted into each other
type UnitCategory string

const (
	CategoryMass   UnitCategory = "mass"
	CategoryVolume UnitCategory = "volume"
	CategoryCount  UnitCategory = "count"
)

// Unit represents the unit of measurement for a product or an ingredient
type Unit string

const (
	// Weight units
	UnitGram     Unit = "g"
	UnitKilogram Unit = "kg"

	// Volume units
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitTablespoon Unit = "tbsp"

	// Count units
	UnitPiece Unit = "pcs"
)

type unitDef struct {
	category UnitCategory
	toBase   float64
}

var unitTable = map[Unit]unitDef{
	UnitGram:       {category: CategoryMass, toBase: 1},
	UnitKilogram:   {category: CategoryMass, toBase: 1000},
	UnitMilliliter: {category: CategoryVolume, toBase: 1},
	UnitLiter:      {category: CategoryVolume, toBase: 1000},
	UnitTablespoon: {category: CategoryVolume, toBase: 15},
	UnitPiece:      {category: CategoryCount, toBase: 1},
}

var unitAliases = map[string]Unit{
	"g":           UnitGram,
	"gr":          UnitGram,
	"gram":        UnitGram,
	"grams":       UnitGram,
	"kg":          UnitKilogram,
	"kilogram":    UnitKilogram,
	"kilograms":   UnitKilogram,
	"ml":          UnitMilliliter,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"l":           UnitLiter,
	"liter":       UnitLiter,
	"liters":      UnitLiter,
	"tbsp":        UnitTablespoon,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"pc":          UnitPiece,
	"pcs":         UnitPiece,
	"piece":       UnitPiece,
	"pieces":      UnitPiece,
}

// Units lists every supported unit in display order
var Units = []Unit{UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece, UnitTablespoon}

// ParseUnit resolves a unit code or a common alias, ignoring case and
// surrounding whitespace
func ParseUnit(text string) (Unit, error) {
	u, ok := unitAliases[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return "", &ValidationError{Field: "unit", Reason: fmt.Sprintf("unknown unit %q", text)}
	}
	return u, nil
}

// Valid reports whether u is one of the supported units
func (u Unit) Valid() bool {
	_, ok := unitTable[u]
	return ok
}

// Category returns the conversion category of the unit
func (u Unit) Category() UnitCategory {
	return unitTable[u].category
}

// Factor returns the multiplier from u to its category's base unit
func (u Unit) Factor() float64 {
	if def, ok := unitTable[u]; ok {
		return def.toBase
	}
	return 1
}

// ToBase converts an amount expressed in u into the base unit
func (u Unit) ToBase(amount float64) float64 {
	return amount * u.Factor()
}

// FromBase converts an amount expressed in the base unit into u
func (u Unit) FromBase(amount float64) float64 {
	return amount / u.Factor()
}

// CompatibleWith reports whether amounts in u and other can be converted
func (u Unit) CompatibleWith(other Unit) bool {
	return u.Valid() && other.Valid() && u.Category() == other.Category()
}

func (u Unit) String() string {
	return string(u)
}

// Convert re-expresses amount from one unit in another of the same category
func Convert(amount float64, from, to Unit) (float64, error) {
	if !from.CompatibleWith(to) {
		return 0, fmt.Errorf("%w: %s -> %s", ErrIncompatibleUnits, from, to)
	}
	if from == to {
		return amount, nil
	}
	return to.FromBase(from.ToBase(amount)), nil
}
