package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"kaseti/internal/sdk"
)

const preferencesKey = "music-state"

// Preferences is the bounded subset of state that survives restarts.
type Preferences struct {
	Volume      float64        `json:"volume"`
	IsMuted     bool           `json:"isMuted"`
	Shuffle     bool           `json:"shuffle"`
	Repeat      sdk.RepeatMode `json:"repeat"`
	CurrentView string         `json:"currentView"`
	SortBy      string         `json:"sortBy"`
}

func (p Preferences) applyTo(state *State) {
	state.Volume = clampVolume(p.Volume)
	state.IsMuted = p.IsMuted
	state.Shuffle = p.Shuffle
	state.Repeat = sdk.NormalizeRepeatMode(string(p.Repeat))
	if p.CurrentView != "" {
		state.CurrentView = p.CurrentView
	}
	if p.SortBy != "" {
		state.SortBy = p.SortBy
	}
}

type PrefRepository struct {
	db *sql.DB
}

func NewPrefRepository(database *sql.DB) *PrefRepository {
	return &PrefRepository{db: database}
}

// Load returns the persisted preferences, or nil when nothing usable is
// stored. A row that fails to decode is treated as absent.
func (r *PrefRepository) Load() (*Preferences, error) {
	var raw string
	err := r.db.QueryRow("SELECT value FROM preferences WHERE key = ?", preferencesKey).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load preferences: %w", err)
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, nil
	}

	return &prefs, nil
}

func (r *PrefRepository) Save(prefs Preferences) error {
	encoded, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = r.db.Exec(
		"INSERT INTO preferences (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		preferencesKey,
		string(encoded),
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}

	return nil
}

func (r *PrefRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM preferences WHERE key = ?", preferencesKey); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}

	return nil
}
