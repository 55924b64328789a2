// Package snapshot persists game states as one JSON file per instance.
// Writes go through a temp file and rename so a crash mid-write never
// corrupts the previous snapshot.
package snapshot

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmarve/statekeeper/internal/model"
)

// Store reads and writes instance snapshots under a single directory.
type Store struct {
	dir string
}

// NewStore creates the snapshot directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(instanceID string) string {
	return filepath.Join(s.dir, instanceID+".json")
}

// Save atomically replaces the snapshot file for the given state.
func (s *Store) Save(st *model.GameState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", st.InstanceID, err)
	}

	tmp, err := os.CreateTemp(s.dir, st.InstanceID+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot for %s: %w", st.InstanceID, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing snapshot %s: %w", st.InstanceID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing snapshot %s: %w", st.InstanceID, err)
	}
	if err := os.Rename(tmpName, s.path(st.InstanceID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing snapshot %s: %w", st.InstanceID, err)
	}
	return nil
}

// LoadAll decodes every snapshot file in the directory. A file that fails to
// decode is logged and skipped so one corrupt snapshot cannot block the
// remaining instances from loading.
func (s *Store) LoadAll() ([]*model.GameState, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot dir %s: %w", s.dir, err)
	}

	var states []*model.GameState
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		full := filepath.Join(s.dir, name)
		data, err := os.ReadFile(full)
		if err != nil {
			slog.Warn("skipping unreadable snapshot", "file", full, "err", err)
			continue
		}
		var st model.GameState
		if err := json.Unmarshal(data, &st); err != nil {
			slog.Warn("skipping undecodable snapshot", "file", full, "err", err)
			continue
		}
		if st.InstanceID == "" {
			st.InstanceID = strings.TrimSuffix(name, ".json")
		}
		states = append(states, &st)
	}
	return states, nil
}
