// Package state persists the result of the most recent reconciliation
// run. The file is advisory: the provider API stays authoritative for
// record contents, and the stored value is only used for log context.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// RunState is the last-run record written after each successful cycle.
type RunState struct {
	IP        string    `json:"ip"`
	Outcome   string    `json:"outcome"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted state. A missing file is not an error and
// returns (nil, nil).
func (s *Store) Load() (*RunState, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st RunState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding state file %s: %w", s.path, err)
	}
	return &st, nil
}

// Save overwrites the persisted state.
func (s *Store) Save(st RunState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, append(data, '\n'), 0o644)
}
