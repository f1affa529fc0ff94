package models

import (
	"encoding/json"
	"sort"
	"strings"
)

const (
	shortDescriptionLimit = 50
	shortDescriptionCut   = 47
)

// Dish is a named recipe: the ingredients it requires, not a stock.
// A Dish is an immutable value; copies held by the weekly menu are
// independent of the catalog's entry.
type Dish struct {
	name        string
	description string
	ingredients map[string]Quantity
}

// NewDish validates and builds a dish. The ingredient map is copied.
func NewDish(name, description string, ingredients map[string]Quantity) (Dish, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Dish{}, &ValidationError{Field: "name", Reason: "dish name is required"}
	}
	copied := make(map[string]Quantity, len(ingredients))
	for product, q := range ingredients {
		product = strings.TrimSpace(product)
		if product == "" {
			return Dish{}, &ValidationError{Field: "ingredients", Reason: "ingredient name is required"}
		}
		if _, err := NewQuantity(q.amount, q.unit); err != nil {
			return Dish{}, err
		}
		copied[product] = q
	}
	return Dish{name: name, description: description, ingredients: copied}, nil
}

// MustDish is like NewDish but panics on invalid input
func MustDish(name, description string, ingredients map[string]Quantity) Dish {
	d, err := NewDish(name, description, ingredients)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the dish name, the catalog key
func (d Dish) Name() string {
	return d.name
}

// Description returns the full description
func (d Dish) Description() string {
	return d.description
}

// ShortDescription returns the description trimmed for list views
func (d Dish) ShortDescription() string {
	if len([]rune(d.description)) <= shortDescriptionLimit {
		return d.description
	}
	return string([]rune(d.description)[:shortDescriptionCut]) + "..."
}

// Ingredients returns a copy of the ingredient map
func (d Dish) Ingredients() map[string]Quantity {
	out := make(map[string]Quantity, len(d.ingredients))
	for k, v := range d.ingredients {
		out[k] = v
	}
	return out
}

// IngredientNames returns the ingredient product names sorted
func (d Dish) IngredientNames() []string {
	names := make([]string, 0, len(d.ingredients))
	for k := range d.ingredients {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// HasIngredient checks if the dish requires a specific product
func (d Dish) HasIngredient(product string) bool {
	_, ok := d.ingredients[product]
	return ok
}

// IsZero reports whether d is the zero Dish
func (d Dish) IsZero() bool {
	return d.name == "" && d.description == "" && len(d.ingredients) == 0
}

// Equal compares name, description and every ingredient exactly
func (d Dish) Equal(other Dish) bool {
	if d.name != other.name || d.description != other.description {
		return false
	}
	if len(d.ingredients) != len(other.ingredients) {
		return false
	}
	for product, q := range d.ingredients {
		oq, ok := other.ingredients[product]
		if !ok || !q.Equal(oq) {
			return false
		}
	}
	return true
}

func (d Dish) String() string {
	return d.name
}

type dishJSON struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Ingredients map[string]Quantity `json:"ingredients"`
}

// MarshalJSON implements json.Marshaler
func (d Dish) MarshalJSON() ([]byte, error) {
	return json.Marshal(dishJSON{Name: d.name, Description: d.description, Ingredients: d.Ingredients()})
}

// UnmarshalJSON implements json.Unmarshaler and re-validates the value
func (d *Dish) UnmarshalJSON(data []byte) error {
	var raw dishJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewDish(raw.Name, raw.Description, raw.Ingredients)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
