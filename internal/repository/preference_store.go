package repository

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// PreferenceStore keeps per-user theme and timetable selection.
type PreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]models.Preference
}

// NewPreferenceStore creates an empty store.
func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{prefs: make(map[string]models.Preference)}
}

// Get returns the preference of userID, or a zero preference for unknown users.
func (s *PreferenceStore) Get(userID string) models.Preference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID]
	if !ok {
		return models.Preference{UserID: userID}
	}
	return p
}

// Update applies fn to the preference of userID, creating it on first use.
func (s *PreferenceStore) Update(userID string, fn func(*models.Preference)) models.Preference {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prefs[userID]
	if !ok {
		p = models.Preference{UserID: userID}
	}
	fn(&p)
	p.UserID = userID
	s.prefs[userID] = p
	return p
}

// MarshalState serialises the store, ordered by user id for stable output.
func (s *PreferenceStore) MarshalState() ([]byte, error) {
	s.mu.RLock()
	items := make([]models.Preference, 0, len(s.prefs))
	for _, p := range s.prefs {
		items = append(items, p)
	}
	s.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].UserID < items[j].UserID })
	return json.Marshal(models.PreferenceState{Preferences: items})
}

// UnmarshalState replaces all preferences with the persisted ones.
func (s *PreferenceStore) UnmarshalState(raw []byte) error {
	var state models.PreferenceState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode preference state: %w", err)
	}
	prefs := make(map[string]models.Preference, len(state.Preferences))
	for _, p := range state.Preferences {
		if p.UserID == "" {
			continue
		}
		prefs[p.UserID] = p
	}
	s.mu.Lock()
	s.prefs = prefs
	s.mu.Unlock()
	return nil
}
