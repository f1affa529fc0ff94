// Package menu holds the weekly meal grid and the planner that keeps the
// product ledger consistent with what is planned in it.
package menu

import (
	"menuplanner/internal/models"
)

// Week is a 7 day × 3 meal grid of optional dish copies. Every slot
// exists from construction; slots are only assigned or emptied.
type Week struct {
	slots [7][3]*models.Dish
}

// NewWeek creates a week with every slot empty
func NewWeek() *Week {
	return &Week{}
}

func slotIndex(day models.Day, meal models.Meal) (int, int, error) {
	d := day.Index()
	if d < 0 {
		return 0, 0, &models.ValidationError{Field: "day", Reason: "unknown day " + string(day)}
	}
	m := meal.Index()
	if m < 0 {
		return 0, 0, &models.ValidationError{Field: "meal", Reason: "unknown meal " + string(meal)}
	}
	return d, m, nil
}

// Get returns the dish planned at day/meal
func (w *Week) Get(day models.Day, meal models.Meal) (models.Dish, bool, error) {
	d, m, err := slotIndex(day, meal)
	if err != nil {
		return models.Dish{}, false, err
	}
	if w.slots[d][m] == nil {
		return models.Dish{}, false, nil
	}
	return *w.slots[d][m], true, nil
}

// Set stores a copy of dish at day/meal
func (w *Week) Set(day models.Day, meal models.Meal, dish models.Dish) error {
	d, m, err := slotIndex(day, meal)
	if err != nil {
		return err
	}
	w.slots[d][m] = &dish
	return nil
}

// ClearSlot empties day/meal and returns the dish it held
func (w *Week) ClearSlot(day models.Day, meal models.Meal) (models.Dish, bool, error) {
	d, m, err := slotIndex(day, meal)
	if err != nil {
		return models.Dish{}, false, err
	}
	prev := w.slots[d][m]
	w.slots[d][m] = nil
	if prev == nil {
		return models.Dish{}, false, nil
	}
	return *prev, true, nil
}

// ReplaceDish overwrites every slot holding a dish named oldName with
// dish and returns the number of slots changed
func (w *Week) ReplaceDish(oldName string, dish models.Dish) int {
	n := 0
	for d := range w.slots {
		for m := range w.slots[d] {
			if cur := w.slots[d][m]; cur != nil && cur.Name() == oldName {
				copied := dish
				w.slots[d][m] = &copied
				n++
			}
		}
	}
	return n
}

// Planned returns the number of assigned slots
func (w *Week) Planned() int {
	n := 0
	for d := range w.slots {
		for m := range w.slots[d] {
			if w.slots[d][m] != nil {
				n++
			}
		}
	}
	return n
}

// Slots returns every assigned slot keyed by day and meal
func (w *Week) Slots() map[models.Day]map[models.Meal]models.Dish {
	out := make(map[models.Day]map[models.Meal]models.Dish, len(models.Days))
	for di, day := range models.Days {
		meals := make(map[models.Meal]models.Dish)
		for mi, meal := range models.Meals {
			if dish := w.slots[di][mi]; dish != nil {
				meals[meal] = *dish
			}
		}
		out[day] = meals
	}
	return out
}

// Restore replaces the whole grid. Unknown days or meals are skipped.
func (w *Week) Restore(slots map[models.Day]map[models.Meal]models.Dish) {
	w.slots = [7][3]*models.Dish{}
	for day, meals := range slots {
		for meal, dish := range meals {
			_ = w.Set(day, meal, dish)
		}
	}
}
