package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/rs/zerolog"

	"menuplanner/internal/models"
)

// unitColumn reads a NULL unit, left behind by schema version 1, as ""
type unitColumn string

// Value converts the unit for storage
func (u unitColumn) Value() (driver.Value, error) {
	return string(u), nil
}

// Scan converts the database value back to a unit code
func (u *unitColumn) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*u = ""
	case []byte:
		*u = unitColumn(v)
	case string:
		*u = unitColumn(v)
	default:
		return fmt.Errorf("unsupported type %T for unit column", value)
	}
	return nil
}

type snapshotMeta struct {
	ID            uint `gorm:"primary_key"`
	SchemaVersion int
	Revision      string
	SavedAt       time.Time
}

// TableName sets the table name for snapshotMeta
func (snapshotMeta) TableName() string {
	return "snapshot_meta"
}

type dishRecord struct {
	Name            string `gorm:"primary_key"`
	Position        int
	Description     string `gorm:"type:text"`
	IngredientsJSON string `gorm:"column:ingredients;type:text"`
}

// TableName sets the table name for dishRecord
func (dishRecord) TableName() string {
	return "dishes"
}

type menuSlotRecord struct {
	Day             string `gorm:"primary_key"`
	Meal            string `gorm:"primary_key"`
	DishName        string
	Description     string `gorm:"type:text"`
	IngredientsJSON string `gorm:"column:ingredients;type:text"`
}

// TableName sets the table name for menuSlotRecord
func (menuSlotRecord) TableName() string {
	return "menu_slots"
}

type productRecord struct {
	Name   string `gorm:"primary_key"`
	Amount float64
	Unit   unitColumn `gorm:"type:varchar(16)"`
}

// TableName sets the table name for productRecord
func (productRecord) TableName() string {
	return "products"
}

// SQLOptions configures a SQLStore
type SQLOptions struct {
	// LegacyUnit is given to amounts stored without a unit
	LegacyUnit models.Unit
	Logger     zerolog.Logger
}

// SQLStore keeps the snapshot in a relational database through GORM
type SQLStore struct {
	db         *gorm.DB
	legacyUnit models.Unit
	log        zerolog.Logger
	migrated   bool
}

// NewSQLStore wraps an open database. Tables are created or upgraded on
// first use.
func NewSQLStore(db *gorm.DB, opts SQLOptions) *SQLStore {
	if !opts.LegacyUnit.Valid() {
		opts.LegacyUnit = models.UnitGram
	}
	return &SQLStore{db: db, legacyUnit: opts.LegacyUnit, log: opts.Logger}
}

func (s *SQLStore) migrate() error {
	if s.migrated {
		return nil
	}
	err := s.db.AutoMigrate(&snapshotMeta{}, &dishRecord{}, &menuSlotRecord{}, &productRecord{}).Error
	if err != nil {
		return err
	}
	s.migrated = true
	return nil
}

// Load reads the stored snapshot. Rows written before units were stored
// are read with the legacy unit.
func (s *SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.migrate(); err != nil {
		return nil, &PersistenceError{Op: "load", Err: err}
	}

	version := 1
	var meta snapshotMeta
	err := s.db.First(&meta).Error
	switch {
	case err == nil:
		version = meta.SchemaVersion
	case gorm.IsRecordNotFoundError(err):
	default:
		return nil, &PersistenceError{Op: "load", Err: err}
	}
	if version > SchemaVersion {
		return nil, &PersistenceError{Op: "load", Err: fmt.Errorf("%w: schema version %d", ErrIncompatibleSnapshot, version)}
	}

	var dishes []dishRecord
	var slots []menuSlotRecord
	var products []productRecord
	if err := s.db.Order("position").Find(&dishes).Error; err != nil {
		return nil, &PersistenceError{Op: "load dishes", Err: err}
	}
	if err := s.db.Find(&slots).Error; err != nil {
		return nil, &PersistenceError{Op: "load menu", Err: err}
	}
	if err := s.db.Find(&products).Error; err != nil {
		return nil, &PersistenceError{Op: "load products", Err: err}
	}

	if meta.ID == 0 && len(dishes) == 0 && len(slots) == 0 && len(products) == 0 {
		return nil, ErrNoSnapshot
	}

	snap := NewSnapshot()
	for _, rec := range dishes {
		dish, err := s.decodeDish(rec.Name, rec.Description, rec.IngredientsJSON)
		if err != nil {
			return nil, &PersistenceError{Op: "load dishes", Err: err}
		}
		snap.Dishes = append(snap.Dishes, dish)
	}

	for _, rec := range slots {
		day, err := models.ParseDay(rec.Day)
		if err != nil {
			s.log.Warn().Str("day", rec.Day).Msg("skipping menu slot with unknown day")
			continue
		}
		meal, err := models.ParseMeal(rec.Meal)
		if err != nil {
			s.log.Warn().Str("meal", rec.Meal).Msg("skipping menu slot with unknown meal")
			continue
		}
		dish, err := s.decodeDish(rec.DishName, rec.Description, rec.IngredientsJSON)
		if err != nil {
			return nil, &PersistenceError{Op: "load menu", Err: err}
		}
		snap.Menu[day][meal] = dish
	}

	legacy := 0
	for _, rec := range products {
		unit := s.legacyUnit
		if rec.Unit == "" {
			legacy++
		} else if unit, err = models.ParseUnit(string(rec.Unit)); err != nil {
			return nil, &PersistenceError{Op: "load products", Err: err}
		}
		q, err := models.NewQuantity(rec.Amount, unit)
		if err != nil {
			return nil, &PersistenceError{Op: "load products", Err: fmt.Errorf("product %s: %w", rec.Name, err)}
		}
		snap.Products[rec.Name] = q
	}
	if legacy > 0 {
		s.log.Info().Int("products", legacy).Str("unit", string(s.legacyUnit)).Msg("read legacy product amounts")
	}

	return snap, nil
}

func (s *SQLStore) decodeDish(name, description, ingredients string) (models.Dish, error) {
	decoded, err := decodeIngredients(ingredients, s.legacyUnit)
	if err != nil {
		return models.Dish{}, fmt.Errorf("dish %s: %w", name, err)
	}
	return models.NewDish(name, description, decoded)
}

// Save replaces the stored snapshot inside one transaction
func (s *SQLStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.migrate(); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return &PersistenceError{Op: "save", Err: tx.Error}
	}
	if err := writeSnapshot(tx, snap); err != nil {
		tx.Rollback()
		return &PersistenceError{Op: "save", Err: err}
	}
	if err := tx.Commit().Error; err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func writeSnapshot(tx *gorm.DB, snap *Snapshot) error {
	for _, table := range []string{dishRecord{}.TableName(), menuSlotRecord{}.TableName(), productRecord{}.TableName()} {
		if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}

	for i, dish := range snap.Dishes {
		ingredients, err := encodeIngredients(dish.Ingredients())
		if err != nil {
			return err
		}
		rec := dishRecord{Name: dish.Name(), Position: i, Description: dish.Description(), IngredientsJSON: ingredients}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("dish %s: %w", dish.Name(), err)
		}
	}

	for _, day := range models.Days {
		for _, meal := range models.Meals {
			dish, ok := snap.Menu[day][meal]
			if !ok {
				continue
			}
			ingredients, err := encodeIngredients(dish.Ingredients())
			if err != nil {
				return err
			}
			rec := menuSlotRecord{
				Day:             string(day),
				Meal:            string(meal),
				DishName:        dish.Name(),
				Description:     dish.Description(),
				IngredientsJSON: ingredients,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("menu slot %s/%s: %w", day, meal, err)
			}
		}
	}

	for name, q := range snap.Products {
		rec := productRecord{Name: name, Amount: q.Amount(), Unit: unitColumn(q.Unit())}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("product %s: %w", name, err)
		}
	}

	meta := snapshotMeta{ID: 1, SchemaVersion: SchemaVersion, Revision: uuid.NewString(), SavedAt: time.Now().UTC()}
	return tx.Save(&meta).Error
}

// Revision returns the id stamped on the last saved snapshot
func (s *SQLStore) Revision() (string, error) {
	if err := s.migrate(); err != nil {
		return "", err
	}
	var meta snapshotMeta
	if err := s.db.First(&meta).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return "", nil
		}
		return "", err
	}
	return meta.Revision, nil
}

// Close closes the underlying database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
