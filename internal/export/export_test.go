package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menuplanner/internal/models"
)

func TestWriteProducts(t *testing.T) {
	var buf bytes.Buffer
	err := WriteProducts(&buf, map[string]models.Quantity{
		"sugar": models.MustQuantity(0.5, models.UnitKilogram),
		"eggs":  models.MustQuantity(6, models.UnitPiece),
		"milk":  models.MustQuantity(1000, models.UnitMilliliter),
	})
	require.NoError(t, err)
	assert.Equal(t, "eggs: 6 pcs\nmilk: 1000 ml\nsugar: 0.5 kg\n", buf.String())
}

func TestWriteMenu(t *testing.T) {
	menu := map[models.Day]map[models.Meal]models.Dish{
		models.Monday: {
			models.MealLunch: models.MustDish("Soup", "Hot", map[string]models.Quantity{
				"water":  models.MustQuantity(1.5, models.UnitLiter),
				"carrot": models.MustQuantity(2, models.UnitPiece),
			}),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMenu(&buf, menu))
	out := buf.String()

	wantMonday := "Monday:\n" +
		"  Breakfast: not chosen\n\n" +
		"  Lunch: Soup\n" +
		"    Description: Hot\n" +
		"    Ingredients:\n" +
		"      - carrot: 2 pcs\n" +
		"      - water: 1.5 l\n\n" +
		"  Dinner: not chosen\n\n\n"
	assert.True(t, strings.HasPrefix(out, wantMonday), out)

	for _, day := range models.Days {
		assert.Contains(t, out, string(day)+":\n")
	}
	assert.Less(t, strings.Index(out, "Monday:"), strings.Index(out, "Sunday:"))
}

func TestProductsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.txt")
	require.NoError(t, ProductsToFile(path, map[string]models.Quantity{
		"rice": models.MustQuantity(2, models.UnitKilogram),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "rice: 2 kg\n", string(data))
}

func TestMenuToFile_BadPath(t *testing.T) {
	err := MenuToFile(filepath.Join(t.TempDir(), "missing", "menu.txt"), nil)
	assert.Error(t, err)
}
