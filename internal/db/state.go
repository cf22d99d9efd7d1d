package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tgienger/milestones/internal/models"
)

// StateKey is the single key the snapshot blob lives under
const StateKey = "milestones.state"

// Load reads the persisted snapshot. The bool is false when nothing has been saved yet.
func (db *DB) Load() (models.Snapshot, bool, error) {
	var raw string
	err := db.QueryRow("SELECT value FROM kv WHERE key = ?", StateKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("read state: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("decode state: %w", err)
	}
	return snap, true, nil
}

// Save overwrites the persisted snapshot
func (db *DB) Save(snap models.Snapshot) error {
	// Keep empty collections as [] rather than null
	if snap.Projects == nil {
		snap.Projects = []models.Project{}
	}
	if snap.Milestones == nil {
		snap.Milestones = []models.Milestone{}
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, StateKey, string(raw))
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
