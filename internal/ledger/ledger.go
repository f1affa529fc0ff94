// Package ledger holds the authoritative product stock. Every amount is
// unit-aware and no entry is ever kept at or below zero.
//
// A Ledger is not safe for concurrent use; the planner session
// serializes access to it.
package ledger

import (
	"fmt"
	"sort"
	"strings"

	"menuplanner/internal/models"
)

// Ledger maps product names to the quantity in stock
type Ledger struct {
	entries map[string]models.Quantity
}

// Shortage explains why one ingredient of a dish cannot be covered
type Shortage struct {
	Product   string           `json:"product"`
	Required  models.Quantity  `json:"required"`
	Available *models.Quantity `json:"available,omitempty"`
	Reason    string           `json:"reason"`
}

const (
	ReasonMissing      = "missing"
	ReasonInsufficient = "insufficient"
	ReasonUnitMismatch = "unit_mismatch"
)

// New creates an empty ledger
func New() *Ledger {
	return &Ledger{entries: make(map[string]models.Quantity)}
}

func normalizeName(product string) (string, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return "", &models.ValidationError{Field: "product", Reason: "product name is required"}
	}
	return product, nil
}

func validate(q models.Quantity) error {
	_, err := models.NewQuantity(q.Amount(), q.Unit())
	return err
}

// Add puts q on top of the existing stock of product. The stored unit is
// kept and the incoming amount is converted into it.
func (l *Ledger) Add(product string, q models.Quantity) error {
	product, err := normalizeName(product)
	if err != nil {
		return err
	}
	if err := validate(q); err != nil {
		return err
	}

	current, ok := l.entries[product]
	if !ok {
		if !q.IsZero() {
			l.entries[product] = q
		}
		return nil
	}

	incoming, err := models.Convert(q.Amount(), q.Unit(), current.Unit())
	if err != nil {
		return fmt.Errorf("add %s: %w", product, err)
	}
	l.store(product, current.Amount()+incoming, current.Unit())
	return nil
}

// Update replaces the stock of product. A zero amount removes it.
func (l *Ledger) Update(product string, q models.Quantity) error {
	product, err := normalizeName(product)
	if err != nil {
		return err
	}
	if err := validate(q); err != nil {
		return err
	}
	if q.IsZero() {
		delete(l.entries, product)
		return nil
	}
	l.entries[product] = q
	return nil
}

// Remove deletes product from the ledger and reports whether it was there
func (l *Ledger) Remove(product string) bool {
	product = strings.TrimSpace(product)
	_, ok := l.entries[product]
	delete(l.entries, product)
	return ok
}

// Get returns the stock of product
func (l *Ledger) Get(product string) (models.Quantity, bool) {
	q, ok := l.entries[strings.TrimSpace(product)]
	return q, ok
}

// All returns a copy of every entry
func (l *Ledger) All() map[string]models.Quantity {
	out := make(map[string]models.Quantity, len(l.entries))
	for k, v := range l.entries {
		out[k] = v
	}
	return out
}

// Names returns the stocked product names sorted
func (l *Ledger) Names() []string {
	names := make([]string, 0, len(l.entries))
	for k := range l.entries {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of stocked products
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Restore replaces the whole ledger with entries, dropping invalid or
// empty ones
func (l *Ledger) Restore(entries map[string]models.Quantity) {
	l.entries = make(map[string]models.Quantity, len(entries))
	for product, q := range entries {
		if validate(q) != nil || q.IsZero() {
			continue
		}
		if name, err := normalizeName(product); err == nil {
			l.entries[name] = q
		}
	}
}

// CheckAvailability reports whether every ingredient of dish is in stock
// in a sufficient amount. It never changes the ledger.
func (l *Ledger) CheckAvailability(dish models.Dish) bool {
	return len(l.Shortages(dish)) == 0
}

// Shortages lists every ingredient of dish that the stock cannot cover,
// sorted by product name
func (l *Ledger) Shortages(dish models.Dish) []Shortage {
	var out []Shortage
	ingredients := dish.Ingredients()
	for _, product := range dish.IngredientNames() {
		required := ingredients[product]
		available, ok := l.entries[product]
		switch {
		case !ok:
			out = append(out, Shortage{Product: product, Required: required, Reason: ReasonMissing})
		case !available.Unit().CompatibleWith(required.Unit()):
			a := available
			out = append(out, Shortage{Product: product, Required: required, Available: &a, Reason: ReasonUnitMismatch})
		case available.Base()+models.Epsilon < required.Base():
			a := available
			out = append(out, Shortage{Product: product, Required: required, Available: &a, Reason: ReasonInsufficient})
		}
	}
	return out
}

// Deduct takes the ingredients of dish out of stock. Ingredients with no
// stock entry, or stocked in another unit category, are skipped and
// returned. Callers must check availability first.
func (l *Ledger) Deduct(dish models.Dish) (skipped []string) {
	ingredients := dish.Ingredients()
	for _, product := range dish.IngredientNames() {
		required := ingredients[product]
		available, ok := l.entries[product]
		if !ok || !available.Unit().CompatibleWith(required.Unit()) {
			skipped = append(skipped, product)
			continue
		}
		remaining := available.Base() - required.Base()
		l.store(product, available.Unit().FromBase(remaining), available.Unit())
	}
	return skipped
}

// Return puts the ingredients of dish back into stock. An ingredient with
// no stock entry is inserted in the recipe's own unit; one stocked in
// another unit category is skipped and returned.
func (l *Ledger) Return(dish models.Dish) (skipped []string) {
	ingredients := dish.Ingredients()
	for _, product := range dish.IngredientNames() {
		returned := ingredients[product]
		available, ok := l.entries[product]
		if !ok {
			if !returned.IsZero() {
				l.entries[product] = returned
			}
			continue
		}
		if !available.Unit().CompatibleWith(returned.Unit()) {
			skipped = append(skipped, product)
			continue
		}
		total := available.Base() + returned.Base()
		l.store(product, available.Unit().FromBase(total), available.Unit())
	}
	return skipped
}

// store writes amount in unit, removing the entry when nothing is left
func (l *Ledger) store(product string, amount float64, unit models.Unit) {
	if unit.ToBase(amount) <= models.Epsilon {
		delete(l.entries, product)
		return
	}
	l.entries[product] = models.MustQuantity(amount, unit)
}
