package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
)

const previewLength = 40

// RecordActivity appends an entry to the activity log and returns its id.
// Event types outside the documented vocabulary are stored unchanged.
func (db *DB) RecordActivity(eventType domain.EventType, actorId, targetType, targetId string, metadata map[string]any) (string, error) {
	var id string
	err := db.wrapTransaction(func() error {
		var err error
		id, err = db.recordActivity(eventType, actorId, targetType, targetId, metadata)
		return err
	})
	return id, err
}

// recordActivity expects the caller to hold the write lock.
func (db *DB) recordActivity(eventType domain.EventType, actorId, targetType, targetId string, metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(metadata); err != nil {
		return "", fmt.Errorf("encode activity metadata: %w", err)
	}

	id, err := db.counters.Next(KindLog)
	if err != nil {
		return "", err
	}
	err = db.store.Append(activityTable, Row{
		"log_id":      id,
		"event_type":  eventType.String(),
		"actor_id":    actorId,
		"target_type": targetType,
		"target_id":   targetId,
		"metadata":    strings.TrimSpace(buf.String()),
		"created_at":  db.timestamp(),
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ReadRecentActivity returns at most limit entries, newest first. A limit of
// zero or less returns everything.
func (db *DB) ReadRecentActivity(limit int) ([]domain.ActivityLogEntry, error) {
	return db.readActivity(func(Row) bool { return true }, limit)
}

func (db *DB) ReadActivityByActor(actorId string, limit int) ([]domain.ActivityLogEntry, error) {
	return db.readActivity(func(r Row) bool { return r["actor_id"] == actorId }, limit)
}

func (db *DB) readActivity(keep func(Row) bool, limit int) ([]domain.ActivityLogEntry, error) {
	rows, err := db.store.Read(activityTable)
	if err != nil {
		return nil, err
	}
	var selected []Row
	for _, r := range rows {
		if keep(r) {
			selected = append(selected, r)
		}
	}
	newestFirst(selected)
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}

	entries := make([]domain.ActivityLogEntry, 0, len(selected))
	for _, r := range selected {
		entries = append(entries, rowToActivity(r))
	}
	return entries, nil
}

func rowToActivity(r Row) domain.ActivityLogEntry {
	metadata := map[string]any{}
	if raw := strings.TrimSpace(r["metadata"]); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			log.Printf("Unreadable metadata on activity %s: %v", r["log_id"], err)
			metadata = map[string]any{"raw": raw}
		}
	}
	return domain.ActivityLogEntry{
		Id:         r["log_id"],
		EventType:  domain.EventType(r["event_type"]),
		ActorId:    r["actor_id"],
		TargetType: r["target_type"],
		TargetId:   r["target_id"],
		Metadata:   metadata,
		CreatedAt:  util.ParseTimestamp(r["created_at"]),
	}
}
