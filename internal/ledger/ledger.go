// Package ledger provides an append-only history of clock events.
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry represents a single event in the ledger
type Entry struct {
	ID        int64          `json:"id"`
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
	Source    string         `json:"source"`
}

// Ledger provides append-only event logging
type Ledger struct {
	db     *sql.DB
	source string
	now    func() time.Time
}

// New creates a new Ledger using the provided database connection.
// Every row written by this ledger carries source, normally the run id.
func New(db *sql.DB, source string) *Ledger {
	return &Ledger{db: db, source: source, now: time.Now}
}

// Source returns the source stamped on appended rows.
func (l *Ledger) Source() string {
	return l.source
}

// Append adds a new event to the ledger at the current time
func (l *Ledger) Append(eventType string, payload map[string]any) (string, error) {
	return l.AppendAt(eventType, l.now(), payload)
}

// AppendAt adds a new event with an explicit timestamp and returns its id
func (l *Ledger) AppendAt(eventType string, at time.Time, payload map[string]any) (string, error) {
	var payloadJSON []byte
	var err error

	if payload != nil {
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return "", fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	eventID := uuid.NewString()
	_, err = l.db.Exec(`
		INSERT INTO event_ledger (event_id, event_type, timestamp, payload, source)
		VALUES (?, ?, ?, ?, ?)
	`, eventID, eventType, at.UTC().UnixMilli(), string(payloadJSON), l.source)
	if err != nil {
		return "", fmt.Errorf("failed to append %s: %w", eventType, err)
	}

	return eventID, nil
}

// Recent returns the newest entries first
func (l *Ledger) Recent(limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_id, event_type, timestamp, payload, source
		FROM event_ledger
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanEntries(rows)
}

// GetByType returns entries filtered by event type
func (l *Ledger) GetByType(eventType string, limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_id, event_type, timestamp, payload, source
		FROM event_ledger
		WHERE event_type = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, eventType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanEntries(rows)
}

// GetByTimeRange returns entries within a time range
func (l *Ledger) GetByTimeRange(start, end time.Time, limit int) ([]*Entry, error) {
	rows, err := l.db.Query(`
		SELECT id, event_id, event_type, timestamp, payload, source
		FROM event_ledger
		WHERE timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, start.UTC().UnixMilli(), end.UTC().UnixMilli(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return l.scanEntries(rows)
}

// CountByType returns how many entries of each type are stored
func (l *Ledger) CountByType() (map[string]int64, error) {
	rows, err := l.db.Query(`SELECT event_type, COUNT(*) FROM event_ledger GROUP BY event_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var eventType string
		var n int64
		if err := rows.Scan(&eventType, &n); err != nil {
			return nil, err
		}
		counts[eventType] = n
	}
	return counts, rows.Err()
}

// DeleteOlderThan removes entries older than the specified duration (retention policy)
func (l *Ledger) DeleteOlderThan(retention time.Duration) (int64, error) {
	cutoff := l.now().Add(-retention).UTC().UnixMilli()
	result, err := l.db.Exec(`
		DELETE FROM event_ledger WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (l *Ledger) scanEntries(rows *sql.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		var entry Entry
		var payloadStr, source sql.NullString
		var timestamp int64

		err := rows.Scan(&entry.ID, &entry.EventID, &entry.EventType, &timestamp, &payloadStr, &source)
		if err != nil {
			return nil, err
		}

		entry.Timestamp = time.UnixMilli(timestamp).UTC()
		if source.Valid {
			entry.Source = source.String
		}

		if payloadStr.Valid && payloadStr.String != "" {
			entry.Payload = make(map[string]any)
			if err := json.Unmarshal([]byte(payloadStr.String), &entry.Payload); err != nil {
				return nil, fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}
