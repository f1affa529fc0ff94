package menu

import (
	"errors"

	"menuplanner/internal/models"
)

// ErrInsufficientStock is returned when the ledger cannot cover every
// ingredient of the dish being planned
var ErrInsufficientStock = errors.New("insufficient stock")

// Stock is the part of the product ledger the planner drives
type Stock interface {
	CheckAvailability(dish models.Dish) bool
	Deduct(dish models.Dish) []string
	Return(dish models.Dish) []string
}

// Outcome describes what an assignment did
type Outcome string

const (
	OutcomeAssigned  Outcome = "assigned"
	OutcomeUnchanged Outcome = "unchanged"
)

// Planner assigns dishes to slots of a Week and moves the matching
// ingredients in and out of Stock. It is not safe for concurrent use.
type Planner struct {
	week  *Week
	stock Stock
}

// NewPlanner creates a planner over week and stock
func NewPlanner(week *Week, stock Stock) *Planner {
	return &Planner{week: week, stock: stock}
}

// Week returns the grid the planner works on
func (p *Planner) Week() *Week {
	return p.week
}

// Assign plans dish at day/meal. Re-planning an equal dish changes no
// stock. Otherwise the new dish must be fully available before the old
// one is returned and the new one deducted; when it is not, nothing
// changes and ErrInsufficientStock is returned.
func (p *Planner) Assign(day models.Day, meal models.Meal, dish models.Dish) (Outcome, error) {
	current, planned, err := p.week.Get(day, meal)
	if err != nil {
		return "", err
	}

	if planned && current.Equal(dish) {
		if err := p.week.Set(day, meal, dish); err != nil {
			return "", err
		}
		return OutcomeUnchanged, nil
	}

	if !p.stock.CheckAvailability(dish) {
		return "", ErrInsufficientStock
	}

	if planned {
		p.stock.Return(current)
	}
	p.stock.Deduct(dish)
	if err := p.week.Set(day, meal, dish); err != nil {
		return "", err
	}
	return OutcomeAssigned, nil
}

// Clear empties day/meal, returning its ingredients to stock. It reports
// whether a dish was planned there.
func (p *Planner) Clear(day models.Day, meal models.Meal) (bool, error) {
	current, planned, err := p.week.Get(day, meal)
	if err != nil || !planned {
		return false, err
	}
	p.stock.Return(current)
	if _, _, err := p.week.ClearSlot(day, meal); err != nil {
		return false, err
	}
	return true, nil
}

// Read returns the dish planned at day/meal
func (p *Planner) Read(day models.Day, meal models.Meal) (models.Dish, bool, error) {
	return p.week.Get(day, meal)
}
