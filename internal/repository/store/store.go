// Package store holds the in-memory profile store loaded once at startup.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/kailas-cloud/angelsearch/internal/domain"
	"github.com/kailas-cloud/angelsearch/internal/domain/profile"
)

// Conventional fallback filenames tried when the configured path is absent.
var fallbackFiles = []string{"angel_profiles.json", "angel_profiles_llm.json"}

// Store holds a read-only snapshot of profile records. Records are immutable
// for the process lifetime; positions are stable and shared with the vector
// index, so concurrent reads need no locking.
type Store struct {
	profiles []profile.Record
	source   string
}

// New creates a store over an already-decoded record slice.
func New(profiles []profile.Record) *Store {
	return &Store{profiles: profiles}
}

// Load reads the profile array from path, falling back to a fixed list of
// conventional filenames when path is absent or unreadable. A store with
// zero profiles is returned (not an error) when no candidate file loads;
// the service stays up and search answers 503.
func Load(path string, logger *zap.Logger) *Store {
	candidates := make([]string, 0, 1+len(fallbackFiles))
	candidates = append(candidates, path)
	for _, f := range fallbackFiles {
		if f != path {
			candidates = append(candidates, f)
		}
	}

	for _, candidate := range candidates {
		profiles, err := loadFile(candidate)
		if err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("Failed to load profiles file",
					zap.String("path", candidate), zap.Error(err))
			}
			continue
		}
		logger.Info("Loaded profiles",
			zap.String("path", candidate), zap.Int("count", len(profiles)))
		return &Store{profiles: profiles, source: candidate}
	}

	logger.Warn("No profiles file found, search will be unavailable",
		zap.Strings("candidates", candidates))
	return &Store{}
}

func loadFile(path string) ([]profile.Record, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var profiles []profile.Record
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return profiles, nil
}

// Source returns the path the profiles were loaded from, empty when none.
func (s *Store) Source() string { return s.source }

// Count returns the number of loaded profiles.
func (s *Store) Count() int { return len(s.profiles) }

// Get returns the profile at index. Index equals the row position in the
// vector index.
func (s *Store) Get(index int) (*profile.Record, error) {
	if index < 0 || index >= len(s.profiles) {
		return nil, fmt.Errorf("%w: index %d", domain.ErrNotFound, index)
	}
	return &s.profiles[index], nil
}

// Page returns a contiguous slice of profiles, clamped to the store bounds.
// An out-of-range skip yields an empty slice, never an error.
func (s *Store) Page(skip, limit int) []profile.Record {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(s.profiles) || limit <= 0 {
		return []profile.Record{}
	}
	end := skip + limit
	if end > len(s.profiles) {
		end = len(s.profiles)
	}
	return s.profiles[skip:end]
}

// All returns the full snapshot in load order. Callers must not mutate it.
func (s *Store) All() []profile.Record { return s.profiles }
