// Package export renders the product stock and the weekly menu as plain
// text for printing or sharing.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"menuplanner/internal/models"
)

// NotChosen marks an empty menu slot in the menu export
const NotChosen = "not chosen"

// WriteProducts writes one "name: amount unit" line per product, sorted
// by name
func WriteProducts(w io.Writer, products map[string]models.Quantity) error {
	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)

	bw := bufio.NewWriter(w)
	for _, name := range names {
		fmt.Fprintf(bw, "%s: %s\n", name, products[name])
	}
	return bw.Flush()
}

// WriteMenu writes one block per day in week order. Each meal shows the
// dish name or NotChosen, then the description and ingredient list when
// present.
func WriteMenu(w io.Writer, menu map[models.Day]map[models.Meal]models.Dish) error {
	bw := bufio.NewWriter(w)
	for _, day := range models.Days {
		fmt.Fprintf(bw, "%s:\n", day)
		for _, meal := range models.Meals {
			dish, ok := menu[day][meal]
			if !ok {
				fmt.Fprintf(bw, "  %s: %s\n\n", meal.Label(), NotChosen)
				continue
			}

			fmt.Fprintf(bw, "  %s: %s\n", meal.Label(), dish.Name())
			if dish.Description() != "" {
				fmt.Fprintf(bw, "    Description: %s\n", dish.Description())
			}
			if names := dish.IngredientNames(); len(names) > 0 {
				ingredients := dish.Ingredients()
				bw.WriteString("    Ingredients:\n")
				for _, product := range names {
					fmt.Fprintf(bw, "      - %s: %s\n", product, ingredients[product])
				}
			}
			bw.WriteString("\n")
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

// ProductsToFile writes the product export to path
func ProductsToFile(path string, products map[string]models.Quantity) error {
	return toFile(path, func(w io.Writer) error { return WriteProducts(w, products) })
}

// MenuToFile writes the menu export to path
func MenuToFile(path string, menu map[models.Day]map[models.Meal]models.Dish) error {
	return toFile(path, func(w io.Writer) error { return WriteMenu(w, menu) })
}

func toFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	return f.Close()
}
