// Package numparse turns free-form amount text typed by a person into a
// non-negative finite number.
package numparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"menuplanner/internal/models"
)

// ErrParse is matched by every ParseError
var ErrParse = errors.New("parse failed")

// ParseError reports text that could not be read as an amount
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

var (
	notNumeric   = regexp.MustCompile(`[^0-9.]`)
	repeatedDots = regexp.MustCompile(`\.{2,}`)
)

// Normalize applies the separator rules without parsing: comma becomes
// the decimal point, everything but digits and points is dropped and
// runs of points collapse to one. Only the leading number is kept, so
// the text is cut at a second point. A leading or trailing point is
// padded with a zero. It returns "" when nothing numeric is left.
func Normalize(input string) string {
	s := strings.ReplaceAll(input, ",", ".")
	s = notNumeric.ReplaceAllString(s, "")
	s = repeatedDots.ReplaceAllString(s, ".")
	if first := strings.IndexByte(s, '.'); first >= 0 {
		if second := strings.IndexByte(s[first+1:], '.'); second >= 0 {
			s = s[:first+1+second]
		}
	}
	if s == "" || s == "." {
		return ""
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

// Parse reads input as a non-negative decimal amount
func Parse(input string) (float64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, &ParseError{Input: input, Reason: "input is empty"}
	}
	normalized := Normalize(input)
	if normalized == "" {
		return 0, &ParseError{Input: input, Reason: "no digits found"}
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, &ParseError{Input: input, Reason: err.Error()}
	}
	if d.IsNegative() {
		return 0, &ParseError{Input: input, Reason: "number must not be negative"}
	}

	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, &ParseError{Input: input, Reason: "number is too large"}
	}
	return f, nil
}

// SafeParse is like Parse but returns def instead of an error
func SafeParse(input string, def float64) float64 {
	v, err := Parse(input)
	if err != nil {
		return def
	}
	return v
}

// ParseQuantity parses an amount and a unit name into a Quantity
func ParseQuantity(amount, unit string) (models.Quantity, error) {
	a, err := Parse(amount)
	if err != nil {
		return models.Quantity{}, err
	}
	u, err := models.ParseUnit(unit)
	if err != nil {
		return models.Quantity{}, err
	}
	return models.NewQuantity(a, u)
}
