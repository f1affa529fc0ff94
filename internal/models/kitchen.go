package models

import (
	"fmt"
	"strings"
)

// Day is a day of the planning week
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// Days lists the week in planning order
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Meal is a meal slot within a day
type Meal string

const (
	MealBreakfast Meal = "breakfast"
	MealLunch     Meal = "lunch"
	MealDinner    Meal = "dinner"
)

// Meals lists the slots of a day in order
var Meals = []Meal{MealBreakfast, MealLunch, MealDinner}

var mealAliases = map[string]Meal{
	"breakfast": MealBreakfast,
	"morning":   MealBreakfast,
	"lunch":     MealLunch,
	"midday":    MealLunch,
	"dinner":    MealDinner,
	"evening":   MealDinner,
}

// ParseDay resolves a day name case-insensitively
func ParseDay(text string) (Day, error) {
	t := strings.TrimSpace(text)
	for _, d := range Days {
		if strings.EqualFold(string(d), t) {
			return d, nil
		}
	}
	return "", &ValidationError{Field: "day", Reason: fmt.Sprintf("unknown day %q", text)}
}

// ParseMeal resolves a meal slot name or alias case-insensitively
func ParseMeal(text string) (Meal, error) {
	m, ok := mealAliases[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return "", &ValidationError{Field: "meal", Reason: fmt.Sprintf("unknown meal %q", text)}
	}
	return m, nil
}

// Index returns the position of d in Days, or -1
func (d Day) Index() int {
	for i, day := range Days {
		if day == d {
			return i
		}
	}
	return -1
}

// Index returns the position of m in Meals, or -1
func (m Meal) Index() int {
	for i, meal := range Meals {
		if meal == m {
			return i
		}
	}
	return -1
}

// Label returns the capitalised display name of the meal
func (m Meal) Label() string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
