package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"menuplanner/internal/catalog"
	"menuplanner/internal/ledger"
	"menuplanner/internal/models"
	"menuplanner/internal/numparse"
	"menuplanner/internal/planner"
)

// amountText accepts an amount as free-form text ("1,5") or a JSON number
type amountText string

func (a *amountText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = amountText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a string or a number")
	}
	*a = amountText(n.String())
	return nil
}

type quantityRequest struct {
	Amount amountText `json:"amount"`
	Unit   string     `json:"unit" binding:"required"`
}

func (q quantityRequest) quantity() (models.Quantity, error) {
	return numparse.ParseQuantity(string(q.Amount), q.Unit)
}

type dishRequest struct {
	Name        string                     `json:"name" binding:"required"`
	Description string                     `json:"description"`
	Ingredients map[string]quantityRequest `json:"ingredients"`
}

func (r dishRequest) dish() (models.Dish, error) {
	ingredients := make(map[string]models.Quantity, len(r.Ingredients))
	for product, raw := range r.Ingredients {
		q, err := raw.quantity()
		if err != nil {
			return models.Dish{}, fmt.Errorf("ingredient %s: %w", product, err)
		}
		ingredients[product] = q
	}
	return models.NewDish(r.Name, r.Description, ingredients)
}

type productRequest struct {
	Name string `json:"name" binding:"required"`
	quantityRequest
}

type assignRequest struct {
	Dish string `json:"dish" binding:"required"`
}

type exportRequest struct {
	Path string `json:"path" binding:"required"`
}

type productResponse struct {
	Name     string          `json:"name"`
	Quantity models.Quantity `json:"quantity"`
}

type slotResponse struct {
	Day  models.Day   `json:"day"`
	Meal models.Meal  `json:"meal"`
	Dish *models.Dish `json:"dish"`
}

type availabilityResponse struct {
	Dish      string            `json:"dish"`
	Available bool              `json:"available"`
	Shortages []ledger.Shortage `json:"shortages"`
}

func productList(products map[string]models.Quantity) []productResponse {
	out := make([]productResponse, 0, len(products))
	for name, q := range products {
		out = append(out, productResponse{Name: name, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func slotList(menu map[models.Day]map[models.Meal]models.Dish) []slotResponse {
	out := make([]slotResponse, 0, len(models.Days)*len(models.Meals))
	for _, day := range models.Days {
		for _, meal := range models.Meals {
			slot := slotResponse{Day: day, Meal: meal}
			if dish, ok := menu[day][meal]; ok {
				slot.Dish = &dish
			}
			out = append(out, slot)
		}
	}
	return out
}

// abortWithError maps domain errors onto the error envelope
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, numparse.ErrParse):
		status = http.StatusBadRequest
	case errors.Is(err, planner.ErrDishNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateName):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		c.Error(err)
		c.AbortWithStatusJSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
