package planner

import (
	"time"

	"github.com/google/uuid"

	"menuplanner/internal/models"
)

// EventType names a change applied to the session
type EventType string

const (
	EventDishAdded      EventType = "dish_added"
	EventDishUpdated    EventType = "dish_updated"
	EventDishRemoved    EventType = "dish_removed"
	EventMealAssigned   EventType = "meal_assigned"
	EventMealCleared    EventType = "meal_cleared"
	EventProductChanged EventType = "product_changed"
	EventProductRemoved EventType = "product_removed"
)

// Event describes one committed change
type Event struct {
	ID      string      `json:"id"`
	Type    EventType   `json:"type"`
	Subject string      `json:"subject,omitempty"`
	Day     models.Day  `json:"day,omitempty"`
	Meal    models.Meal `json:"meal,omitempty"`
	At      time.Time   `json:"at"`
}

// Notifier receives an Event after each committed change. Publish must
// not block.
type Notifier interface {
	Publish(Event)
}

func newEvent(t EventType, subject string) Event {
	return Event{ID: uuid.NewString(), Type: t, Subject: subject, At: time.Now().UTC()}
}
