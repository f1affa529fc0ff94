// Package store persists the planner state as one snapshot of the dish
// catalog, the weekly menu and the product ledger.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"menuplanner/internal/models"
)

// SchemaVersion is the snapshot layout written by this build. Version 1
// stored product stock as a bare amount without a unit.
const SchemaVersion = 2

var (
	// ErrNoSnapshot is returned by Load when nothing was ever saved
	ErrNoSnapshot = errors.New("no snapshot found")

	// ErrIncompatibleSnapshot is returned by Load for a snapshot written
	// by a newer, unknown layout
	ErrIncompatibleSnapshot = errors.New("incompatible snapshot")
)

// PersistenceError wraps a failed snapshot read or write
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Snapshot is the full durable state of a planner session
type Snapshot struct {
	Dishes   []models.Dish                              `json:"dishes"`
	Menu     map[models.Day]map[models.Meal]models.Dish `json:"weekly_menu"`
	Products map[string]models.Quantity                 `json:"products"`
}

// NewSnapshot returns an empty snapshot with every day present
func NewSnapshot() *Snapshot {
	menu := make(map[models.Day]map[models.Meal]models.Dish, len(models.Days))
	for _, day := range models.Days {
		menu[day] = make(map[models.Meal]models.Dish)
	}
	return &Snapshot{
		Menu:     menu,
		Products: make(map[string]models.Quantity),
	}
}

// Store reads and writes snapshots
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
}

// decodeQuantity reads either the current {"amount","unit"} encoding or
// the legacy bare amount, which is given legacyUnit
func decodeQuantity(raw json.RawMessage, legacyUnit models.Unit) (models.Quantity, bool, error) {
	var q models.Quantity
	if err := json.Unmarshal(raw, &q); err == nil {
		return q, false, nil
	}

	var amount float64
	if err := json.Unmarshal(raw, &amount); err != nil {
		return models.Quantity{}, false, fmt.Errorf("unrecognised quantity encoding %s", string(raw))
	}
	q, err := models.NewQuantity(amount, legacyUnit)
	return q, true, err
}

// decodeIngredients reads a JSON ingredient map in either encoding
func decodeIngredients(data string, legacyUnit models.Unit) (map[string]models.Quantity, error) {
	out := make(map[string]models.Quantity)
	if data == "" {
		return out, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	for product, value := range raw {
		q, _, err := decodeQuantity(value, legacyUnit)
		if err != nil {
			return nil, fmt.Errorf("ingredient %s: %w", product, err)
		}
		out[product] = q
	}
	return out, nil
}

func encodeIngredients(ingredients map[string]models.Quantity) (string, error) {
	if len(ingredients) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(ingredients)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
