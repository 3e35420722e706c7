package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Row is one record of a table keyed by column name.
type Row map[string]string

// Table describes a CSV file and the columns it is written with.
type Table struct {
	Name    string
	Columns []string
}

func (t Table) fileName() string {
	return t.Name + ".csv"
}

// Store persists tables as CSV files in a single directory. Every write
// replaces the whole file through a temp file and a rename, so readers never
// see a partial table. Writers of the same table are serialized; readers do
// not lock.
type Store struct {
	dir string

	mu     sync.Mutex
	tables map[string]*sync.Mutex
}

func NewStore(dir string) *Store {
	return &Store{
		dir:    dir,
		tables: make(map[string]*sync.Mutex),
	}
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(t Table) string {
	return filepath.Join(s.dir, t.fileName())
}

func (s *Store) lock(t Table) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.tables[t.Name]
	if !ok {
		l = &sync.Mutex{}
		s.tables[t.Name] = l
	}
	return l
}

// Read returns all rows of the table. A missing file is an empty table.
func (s *Store) Read(t Table) ([]Row, error) {
	rows, _, err := s.readWithHeader(t)
	return rows, err
}

func (s *Store) readWithHeader(t Table) ([]Row, []string, error) {
	f, err := os.Open(s.path(t))
	if errors.Is(err, os.ErrNotExist) {
		return []Row{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open table %s: %w", t.Name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return []Row{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header of %s: %w", t.Name, err)
	}

	rows := []Row{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read table %s: %w", t.Name, err)
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}

// Write replaces the whole table with rows.
func (s *Store) Write(t Table, rows []Row) error {
	l := s.lock(t)
	l.Lock()
	defer l.Unlock()
	return s.write(t, rows)
}

// Append adds one row. The whole table is read and rewritten.
func (s *Store) Append(t Table, row Row) error {
	return s.Update(t, func(rows []Row) ([]Row, error) {
		return append(rows, row), nil
	})
}

// Update runs a read-modify-write cycle on the table while holding its lock.
// Returning an error from fn leaves the table untouched.
func (s *Store) Update(t Table, fn func(rows []Row) ([]Row, error)) error {
	l := s.lock(t)
	l.Lock()
	defer l.Unlock()

	rows, err := s.Read(t)
	if err != nil {
		return err
	}
	rows, err = fn(rows)
	if err != nil {
		return err
	}
	return s.write(t, rows)
}

func (s *Store) write(t Table, rows []Row) error {
	header := headerFor(t, rows)
	return writeFileAtomic(s.path(t), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		record := make([]string, len(header))
		for _, row := range rows {
			for i, col := range header {
				record[i] = row[col]
			}
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

// headerFor returns the declared columns followed by any extra columns found
// in rows, sorted, so unknown data survives a rewrite.
func headerFor(t Table, rows []Row) []string {
	header := append([]string{}, t.Columns...)
	known := make(map[string]struct{}, len(header))
	for _, c := range header {
		known[c] = struct{}{}
	}
	var extra []string
	for _, row := range rows {
		for col := range row {
			if _, ok := known[col]; !ok {
				known[col] = struct{}{}
				extra = append(extra, col)
			}
		}
	}
	sort.Strings(extra)
	return append(header, extra...)
}

// writeFileAtomic writes through a temp file in the target directory and
// renames it over path.
func writeFileAtomic(path string, fill func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := fill(tmp); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
