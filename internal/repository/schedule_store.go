package repository

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// ScheduleStore owns every class session. Reads return copies; the backing slice
// never escapes.
type ScheduleStore struct {
	mu       sync.RWMutex
	sessions []models.ScheduleSession
}

// NewScheduleStore creates a store seeded with the provided sessions.
func NewScheduleStore(sessions []models.ScheduleSession) *ScheduleStore {
	return &ScheduleStore{sessions: append([]models.ScheduleSession(nil), sessions...)}
}

// All returns the full collection in insertion order.
func (s *ScheduleStore) All() []models.ScheduleSession {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ScheduleSession(nil), s.sessions...)
}

// Len reports the number of sessions.
func (s *ScheduleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// List returns one page of sessions matching the filter plus the total match count.
func (s *ScheduleStore) List(filter models.SessionFilter) ([]models.ScheduleSession, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.ScheduleSession, 0)
	for _, item := range s.sessions {
		if filter.Faculty != "" && item.Faculty != filter.Faculty {
			continue
		}
		if filter.Group != "" && item.Group != filter.Group {
			continue
		}
		if filter.Teacher != "" && item.Teacher != filter.Teacher {
			continue
		}
		if filter.DayOfWeek != nil && item.DayOfWeek != *filter.DayOfWeek {
			continue
		}
		matched = append(matched, item)
	}
	return paginate(matched, filter.Page, filter.PageSize), len(matched)
}

// Get returns a copy of the session with the given id.
func (s *ScheduleStore) Get(id string) (*models.ScheduleSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	session := s.sessions[idx]
	return &session, nil
}

// Create appends a session, assigning an id when missing.
func (s *ScheduleStore) Create(session *models.ScheduleSession) {
	if session.ID == "" {
		session.ID = "schedule_" + uuid.NewString()
	}
	s.mu.Lock()
	s.sessions = append(s.sessions, *session)
	s.mu.Unlock()
}

// Update applies fn to the stored session under the write lock. The change is
// discarded when fn returns an error.
func (s *ScheduleStore) Update(id string, fn func(*models.ScheduleSession) error) (*models.ScheduleSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	candidate := s.sessions[idx]
	if err := fn(&candidate); err != nil {
		return nil, err
	}
	candidate.ID = id
	s.sessions[idx] = candidate
	return &candidate, nil
}

// Delete removes the session with the given id.
func (s *ScheduleStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	return nil
}

// MarshalState serialises the store for persistence.
func (s *ScheduleStore) MarshalState() ([]byte, error) {
	state := models.ScheduleState{Sessions: s.All()}
	return json.Marshal(state)
}

// UnmarshalState replaces the collection with a persisted one.
func (s *ScheduleStore) UnmarshalState(raw []byte) error {
	var state models.ScheduleState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode schedule state: %w", err)
	}
	s.mu.Lock()
	s.sessions = state.Sessions
	s.mu.Unlock()
	return nil
}

func (s *ScheduleStore) indexOf(id string) int {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return i
		}
	}
	return -1
}

func paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
