package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuantity_Validation(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		unit   Unit
	}{
		{"negative", -1, UnitGram},
		{"nan", math.NaN(), UnitGram},
		{"infinite", math.Inf(1), UnitLiter},
		{"unknown unit", 1, Unit("oz")},
		{"empty unit", 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewQuantity(tt.amount, tt.unit)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestQuantity_BaseAndZero(t *testing.T) {
	assert.Equal(t, 1500.0, MustQuantity(1.5, UnitKilogram).Base())
	assert.Equal(t, 45.0, MustQuantity(3, UnitTablespoon).Base())
	assert.True(t, MustQuantity(0, UnitPiece).IsZero())
	assert.True(t, MustQuantity(1e-12, UnitGram).IsZero())
	assert.False(t, MustQuantity(0.001, UnitGram).IsZero())
}

func TestQuantity_EqualIsExact(t *testing.T) {
	assert.True(t, MustQuantity(1, UnitKilogram).Equal(MustQuantity(1, UnitKilogram)))
	assert.False(t, MustQuantity(1, UnitKilogram).Equal(MustQuantity(1000, UnitGram)))
}

func TestQuantity_String(t *testing.T) {
	assert.Equal(t, "250 g", MustQuantity(250, UnitGram).String())
	assert.Equal(t, "1.5 kg", MustQuantity(1.5, UnitKilogram).String())
	assert.Equal(t, "0.1 l", MustQuantity(0.1, UnitLiter).String())
}

func TestQuantity_JSONRejectsInvalid(t *testing.T) {
	var q Quantity
	require.NoError(t, json.Unmarshal([]byte(`{"amount":2,"unit":"pcs"}`), &q))
	assert.Equal(t, MustQuantity(2, UnitPiece), q)

	err := json.Unmarshal([]byte(`{"amount":-2,"unit":"pcs"}`), &q)
	assert.ErrorIs(t, err, ErrValidation)
	err = json.Unmarshal([]byte(`{"amount":2,"unit":"cups"}`), &q)
	assert.ErrorIs(t, err, ErrValidation)
}
