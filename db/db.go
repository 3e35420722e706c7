package db

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/util"
)

// DB is the database struct. All tables live as CSV files in one directory.
type DB struct {
	store    *Store
	counters *Counters

	// mu serializes every mutating operation across tables.
	mu  sync.Mutex
	now func() time.Time
}

// Open prepares the data directory and returns a DB on top of it. Call
// RunMigrations before serving requests.
func Open(dir string) (*DB, error) {
	resolved, err := util.ResolveDataDir(dir)
	if err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	log.Printf("Using data directory %s", resolved)
	return &DB{
		store:    NewStore(resolved),
		counters: NewCounters(resolved),
		now:      util.Now,
	}, nil
}

// Dir returns the directory holding the tables.
func (db *DB) Dir() string {
	return db.store.Dir()
}

// SetClock replaces the time source. Tests use it for deterministic ordering.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) timestamp() string {
	return util.FormatTimestamp(db.now())
}

// wrapTransaction runs f while holding the database write lock. There is no
// rollback: operations validate before they write and failures are not
// retried.
func (db *DB) wrapTransaction(f func() error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err := f(); err != nil {
		log.Printf("error in transaction: %s", err)
		return err
	}
	return nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true
	}
	return false
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// errNoChange aborts a Store.Update without rewriting the table.
var errNoChange = errors.New("no change")
