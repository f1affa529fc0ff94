// Package catalog keeps the named dishes a household can plan with.
// Dish names are unique keys. A Catalog is not safe for concurrent use.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"menuplanner/internal/models"
)

// ErrDuplicateName is matched by every DuplicateNameError
var ErrDuplicateName = errors.New("duplicate dish name")

// DuplicateNameError is returned when a dish name is already taken
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("dish %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error {
	return ErrDuplicateName
}

// Menu receives the new value of a dish that changed in the catalog.
// It returns how many planned slots were rewritten.
type Menu interface {
	ReplaceDish(oldName string, dish models.Dish) int
}

// Catalog stores dishes in insertion order
type Catalog struct {
	dishes []models.Dish
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{}
}

func (c *Catalog) indexOf(name string) int {
	for i, d := range c.dishes {
		if d.Name() == name {
			return i
		}
	}
	return -1
}

// Add inserts dish, rejecting a name that is already taken
func (c *Catalog) Add(dish models.Dish) error {
	if dish.Name() == "" {
		return &models.ValidationError{Field: "name", Reason: "dish name is required"}
	}
	if c.indexOf(dish.Name()) >= 0 {
		return &DuplicateNameError{Name: dish.Name()}
	}
	c.dishes = append(c.dishes, dish)
	return nil
}

// FindByName returns the dish with exactly that name
func (c *Catalog) FindByName(name string) (models.Dish, bool) {
	if i := c.indexOf(name); i >= 0 {
		return c.dishes[i], true
	}
	return models.Dish{}, false
}

// FindByIngredient returns every dish that requires product
func (c *Catalog) FindByIngredient(product string) []models.Dish {
	product = strings.TrimSpace(product)
	var out []models.Dish
	for _, d := range c.dishes {
		if d.HasIngredient(product) {
			out = append(out, d)
		}
	}
	return out
}

// Update replaces the dish called oldName with dish and pushes the new
// value into every menu slot that holds a dish called oldName. When
// oldName is not in the catalog the dish is simply inserted. It returns
// the number of menu slots rewritten.
func (c *Catalog) Update(oldName string, dish models.Dish, menu Menu) (int, error) {
	if dish.Name() == "" {
		return 0, &models.ValidationError{Field: "name", Reason: "dish name is required"}
	}
	if dish.Name() != oldName && c.indexOf(dish.Name()) >= 0 {
		return 0, &DuplicateNameError{Name: dish.Name()}
	}

	if i := c.indexOf(oldName); i >= 0 {
		c.dishes = append(c.dishes[:i], c.dishes[i+1:]...)
	}
	c.dishes = append(c.dishes, dish)

	if menu == nil {
		return 0, nil
	}
	return menu.ReplaceDish(oldName, dish), nil
}

// Remove deletes the dish from the catalog only. Menu slots keep their
// copy of it.
func (c *Catalog) Remove(name string) bool {
	i := c.indexOf(name)
	if i < 0 {
		return false
	}
	c.dishes = append(c.dishes[:i], c.dishes[i+1:]...)
	return true
}

// All returns the dishes in insertion order
func (c *Catalog) All() []models.Dish {
	out := make([]models.Dish, len(c.dishes))
	copy(out, c.dishes)
	return out
}

// Len returns the number of dishes
func (c *Catalog) Len() int {
	return len(c.dishes)
}

// Restore replaces the catalog content. Later duplicates of a name are
// dropped and their names returned.
func (c *Catalog) Restore(dishes []models.Dish) (dropped []string) {
	c.dishes = nil
	for _, d := range dishes {
		if err := c.Add(d); err != nil {
			dropped = append(dropped, d.Name())
		}
	}
	return dropped
}
