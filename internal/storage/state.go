package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Store provides generic versioned state storage with JSON payloads.
// State is keyed by (kind, id) and stored as JSON blobs with version tracking.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new generic state store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get retrieves payload and version for a resource.
// Returns empty payload and version 0 if not found.
func (s *Store) Get(kind, id string) (payload []byte, version int64, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payloadStr string
	err = s.db.QueryRow(`
		SELECT payload, version FROM resource_state
		WHERE kind = ? AND id = ?
	`, kind, id).Scan(&payloadStr, &version)

	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	return []byte(payloadStr), version, nil
}

// Set stores payload, incrementing version automatically.
func (s *Store) Set(kind, id string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Unix()

	_, err := s.db.Exec(`
		INSERT INTO resource_state (kind, id, payload, version, updated_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(kind, id) DO UPDATE SET
			payload = excluded.payload,
			version = version + 1,
			updated_at = excluded.updated_at
	`, kind, id, string(payload), now)

	if err == nil {
		log.Debug().
			Str("kind", kind).
			Str("id", id).
			Str("payload", string(payload)).
			Msg("Store.Set completed")
	}

	return err
}

// GetJSON decodes the stored payload into v. It reports false when no
// entry exists.
func (s *Store) GetJSON(kind, id string, v any) (bool, error) {
	payload, _, err := s.Get(kind, id)
	if err != nil {
		return false, err
	}
	if payload == nil {
		return false, nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", kind, id, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it.
func (s *Store) SetJSON(kind, id string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", kind, id, err)
	}
	return s.Set(kind, id, payload)
}

// Delete removes a resource state entry.
func (s *Store) Delete(kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		DELETE FROM resource_state WHERE kind = ? AND id = ?
	`, kind, id)

	return err
}

// Clear removes all state for a kind. If kind is empty, clears all state.
func (s *Store) Clear(kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if kind == "" {
		_, err = s.db.Exec(`DELETE FROM resource_state`)
	} else {
		_, err = s.db.Exec(`DELETE FROM resource_state WHERE kind = ?`, kind)
	}

	return err
}
