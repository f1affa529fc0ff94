package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrUnreadable is returned by Open when the file exists but is not a
// SQLite database
var ErrUnreadable = errors.New("file is not a readable database")

// Options tunes the SQLite connection
type Options struct {
	// LogMode enables GORM statement logging
	LogMode bool
}

// Open opens (creating if needed) the SQLite database at dbPath
func Open(dbPath string, opts Options) (*gorm.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		if exists(dbPath) {
			return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, dbPath, err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// the header is only read on first access
	if err := db.Exec("SELECT count(*) FROM sqlite_master").Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, dbPath, err)
	}
	db.LogMode(opts.LogMode)

	// SQLite takes a database-level write lock
	db.DB().SetMaxOpenConns(1)
	db.DB().SetMaxIdleConns(1)
	db.DB().SetConnMaxLifetime(time.Hour)

	return db, nil
}

// MoveAside renames an unreadable database file so a fresh one can be
// created at dbPath. It returns the new name.
func MoveAside(dbPath string) (string, error) {
	moved := fmt.Sprintf("%s.unreadable-%s", dbPath, time.Now().UTC().Format("20060102T150405"))
	if err := os.Rename(dbPath, moved); err != nil {
		return "", fmt.Errorf("failed to move unreadable database: %w", err)
	}
	return moved, nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
