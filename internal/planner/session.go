// Package planner is the façade the presentation shell talks to. A
// Session owns the product ledger, the dish catalog and the weekly menu,
// serializes every change behind one lock and writes a snapshot after
// each change.
package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"menuplanner/internal/catalog"
	"menuplanner/internal/export"
	"menuplanner/internal/ledger"
	"menuplanner/internal/menu"
	"menuplanner/internal/models"
	"menuplanner/internal/monitoring"
	"menuplanner/internal/store"
)

// ErrDishNotFound is returned when a dish name is not in the catalog
var ErrDishNotFound = errors.New("dish not found")

// Options configures a Session
type Options struct {
	Store    store.Store
	Logger   zerolog.Logger
	Monitor  *monitoring.Monitor
	Notifier Notifier
}

// Session is the planner state of one household
type Session struct {
	mu sync.RWMutex

	ledger  *ledger.Ledger
	catalog *catalog.Catalog
	week    *menu.Week
	planner *menu.Planner

	store    store.Store
	log      zerolog.Logger
	monitor  *monitoring.Monitor
	notifier Notifier
}

// Open creates a session and loads the last snapshot from opts.Store.
// Load failures never reach the caller: they are logged and the session
// starts empty.
func Open(ctx context.Context, opts Options) *Session {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	week := menu.NewWeek()
	l := ledger.New()
	s := &Session{
		ledger:   l,
		catalog:  catalog.New(),
		week:     week,
		planner:  menu.NewPlanner(week, l),
		store:    opts.Store,
		log:      opts.Logger,
		monitor:  opts.Monitor,
		notifier: opts.Notifier,
	}
	s.load(ctx)
	return s
}

func (s *Session) load(ctx context.Context) {
	snap, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		s.log.Info().Msg("no saved data found, starting with an empty planner")
		s.recordState()
		return
	case err != nil:
		s.log.Error().Err(err).Msg("failed to load saved data, starting with an empty planner")
		s.recordState()
		return
	}

	if dropped := s.catalog.Restore(snap.Dishes); len(dropped) > 0 {
		s.log.Warn().Strs("dishes", dropped).Msg("dropped duplicate dishes from saved data")
	}
	s.week.Restore(snap.Menu)
	s.ledger.Restore(snap.Products)
	s.recordState()

	s.log.Info().
		Int("dishes", s.catalog.Len()).
		Int("products", s.ledger.Len()).
		Int("planned", s.week.Planned()).
		Msg("saved data loaded")
}

// snapshot must be called with the lock held
func (s *Session) snapshot() *store.Snapshot {
	snap := store.NewSnapshot()
	snap.Dishes = s.catalog.All()
	for day, meals := range s.week.Slots() {
		snap.Menu[day] = meals
	}
	snap.Products = s.ledger.All()
	return snap
}

// commit writes the snapshot and announces ev. It must be called with
// the write lock held. A failed write is logged and the in-memory change
// stays. The write outlives cancellation of ctx since the change is
// already applied.
func (s *Session) commit(ctx context.Context, ev Event) {
	start := time.Now()
	err := s.store.Save(context.WithoutCancel(ctx), s.snapshot())
	if s.monitor != nil {
		s.monitor.RecordSave(time.Since(start), err)
	}
	if err != nil {
		s.log.Error().Err(err).Str("event", string(ev.Type)).Msg("failed to save planner data")
	}
	s.recordState()

	if s.notifier != nil {
		s.notifier.Publish(ev)
	}
}

func (s *Session) recordState() {
	if s.monitor != nil {
		s.monitor.RecordState(s.ledger.Len(), s.catalog.Len(), s.week.Planned())
	}
}

// Dishes

// AddDish adds dish to the catalog
func (s *Session) AddDish(ctx context.Context, dish models.Dish) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.catalog.Add(dish); err != nil {
		return err
	}
	s.commit(ctx, newEvent(EventDishAdded, dish.Name()))
	return nil
}

// UpdateDish replaces the dish called oldName and rewrites every menu
// slot planned with it. It returns the number of slots rewritten.
func (s *Session) UpdateDish(ctx context.Context, oldName string, dish models.Dish) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.catalog.Update(oldName, dish, s.week)
	if err != nil {
		return 0, err
	}
	s.log.Debug().Str("dish", oldName).Str("new_name", dish.Name()).Int("slots", n).Msg("dish updated")
	s.commit(ctx, newEvent(EventDishUpdated, dish.Name()))
	return n, nil
}

// RemoveDish removes the dish from the catalog. Planned copies stay in
// the menu.
func (s *Session) RemoveDish(ctx context.Context, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.Remove(name) {
		return false
	}
	s.commit(ctx, newEvent(EventDishRemoved, name))
	return true
}

// FindDish looks a dish up by exact name
func (s *Session) FindDish(name string) (models.Dish, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.FindByName(name)
}

// Dishes returns the catalog in insertion order
func (s *Session) Dishes() []models.Dish {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.All()
}

// DishesWithIngredient returns every dish that requires product
func (s *Session) DishesWithIngredient(product string) []models.Dish {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.FindByIngredient(product)
}

// Menu

// AssignMeal plans dish at day/meal. When the stock cannot cover the
// dish nothing changes and it returns false with the missing products.
func (s *Session) AssignMeal(ctx context.Context, day models.Day, meal models.Meal, dish models.Dish) (bool, []ledger.Shortage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assign(ctx, day, meal, dish)
}

// AssignMealByName plans the catalog dish called name at day/meal
func (s *Session) AssignMealByName(ctx context.Context, day models.Day, meal models.Meal, name string) (bool, []ledger.Shortage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dish, ok := s.catalog.FindByName(name)
	if !ok {
		return false, nil, fmt.Errorf("%w: %s", ErrDishNotFound, name)
	}
	return s.assign(ctx, day, meal, dish)
}

func (s *Session) assign(ctx context.Context, day models.Day, meal models.Meal, dish models.Dish) (bool, []ledger.Shortage, error) {
	if dish.Name() == "" {
		return false, nil, &models.ValidationError{Field: "dish", Reason: "dish name is required"}
	}
	outcome, err := s.planner.Assign(day, meal, dish)
	if errors.Is(err, menu.ErrInsufficientStock) {
		if s.monitor != nil {
			s.monitor.RecordAssignment("insufficient")
		}
		s.log.Info().Str("day", string(day)).Str("meal", string(meal)).Str("dish", dish.Name()).
			Msg("not enough products for dish")
		return false, s.ledger.Shortages(dish), nil
	}
	if err != nil {
		return false, nil, err
	}

	if s.monitor != nil {
		s.monitor.RecordAssignment(string(outcome))
	}
	ev := newEvent(EventMealAssigned, dish.Name())
	ev.Day, ev.Meal = day, meal
	s.commit(ctx, ev)
	return true, nil, nil
}

// ClearMeal empties day/meal and returns its ingredients to stock. It
// reports whether a dish was planned there.
func (s *Session) ClearMeal(ctx context.Context, day models.Day, meal models.Meal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cleared, err := s.planner.Clear(day, meal)
	if err != nil {
		return false, err
	}
	ev := newEvent(EventMealCleared, "")
	ev.Day, ev.Meal = day, meal
	s.commit(ctx, ev)
	return cleared, nil
}

// Meal returns the dish planned at day/meal
func (s *Session) Meal(day models.Day, meal models.Meal) (models.Dish, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.planner.Read(day, meal)
}

// Menu returns every planned slot keyed by day and meal
func (s *Session) Menu() map[models.Day]map[models.Meal]models.Dish {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.week.Slots()
}

// Products

// AddProduct adds q to the stock of product
func (s *Session) AddProduct(ctx context.Context, product string, q models.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Add(product, q); err != nil {
		return err
	}
	s.commit(ctx, newEvent(EventProductChanged, product))
	return nil
}

// UpdateProduct sets the stock of product; zero removes it
func (s *Session) UpdateProduct(ctx context.Context, product string, q models.Quantity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Update(product, q); err != nil {
		return err
	}
	t := EventProductChanged
	if q.IsZero() {
		t = EventProductRemoved
	}
	s.commit(ctx, newEvent(t, product))
	return nil
}

// RemoveProduct deletes product from stock and reports whether it was
// stocked
func (s *Session) RemoveProduct(ctx context.Context, product string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ledger.Remove(product) {
		return false
	}
	s.commit(ctx, newEvent(EventProductRemoved, product))
	return true
}

// Product returns the stock of product
func (s *Session) Product(product string) (models.Quantity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Get(product)
}

// Products returns a copy of the whole stock
func (s *Session) Products() map[string]models.Quantity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.All()
}

// CheckAvailability reports whether the stock covers dish
func (s *Session) CheckAvailability(dish models.Dish) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.CheckAvailability(dish)
}

// Shortages lists what the stock is missing for dish
func (s *Session) Shortages(dish models.Dish) []ledger.Shortage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ledger.Shortages(dish)
}

// Export

// ExportProducts writes the product list to path
func (s *Session) ExportProducts(path string) error {
	return export.ProductsToFile(path, s.Products())
}

// ExportMenu writes the weekly menu to path
func (s *Session) ExportMenu(path string) error {
	return export.MenuToFile(path, s.Menu())
}

// Close releases the store
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Close()
}
