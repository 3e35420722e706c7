package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const CountersFileName = "counters.json"

// Identifier kinds.
const (
	KindUser    = "user"
	KindPost    = "post"
	KindRepost  = "repost"
	KindComment = "comment"
	KindLog     = "log"
)

var kindPrefixes = map[string]string{
	KindUser:    "u",
	KindPost:    "p",
	KindRepost:  "r",
	KindComment: "c",
	KindLog:     "l",
}

// Counters allocates monotonic identifiers per kind. The counter state is
// rewritten after every allocation so it survives restarts.
type Counters struct {
	path string
	mu   sync.Mutex
}

func NewCounters(dir string) *Counters {
	return &Counters{path: filepath.Join(dir, CountersFileName)}
}

// Next increments the counter for kind and returns "<prefix>_<n:04d>".
func (c *Counters) Next(kind string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.load()
	if err != nil {
		return "", err
	}
	n := state[kind] + 1
	state[kind] = n

	err = writeFileAtomic(c.path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(state)
	})
	if err != nil {
		return "", err
	}
	return FormatId(kind, n), nil
}

// Current returns the last value handed out for kind.
func (c *Counters) Current(kind string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, err := c.load()
	if err != nil {
		return 0, err
	}
	return state[kind], nil
}

func (c *Counters) load() (map[string]int, error) {
	state := make(map[string]int)
	buf, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}
	if len(buf) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(buf, &state); err != nil {
		return nil, fmt.Errorf("parse counters: %w", err)
	}
	return state, nil
}

func FormatId(kind string, n int) string {
	prefix, ok := kindPrefixes[kind]
	if !ok {
		prefix = "x"
	}
	return fmt.Sprintf("%s_%04d", prefix, n)
}
