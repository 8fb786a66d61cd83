package repository

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// ConsultationStore owns consultations. Registration check-and-append happens
// under the write lock so concurrent requests cannot overfill a consultation.
type ConsultationStore struct {
	mu            sync.RWMutex
	consultations []models.Consultation
}

// NewConsultationStore creates a store from the given consultations.
func NewConsultationStore(items []models.Consultation) *ConsultationStore {
	return &ConsultationStore{consultations: cloneConsultations(items)}
}

// List returns consultations matching the filter in insertion order.
func (s *ConsultationStore) List(filter models.ConsultationFilter) []models.Consultation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Consultation, 0, len(s.consultations))
	for _, c := range s.consultations {
		if filter.Faculty != "" && c.Faculty != filter.Faculty {
			continue
		}
		if filter.Group != "" && !containsString(c.Groups, filter.Group) {
			continue
		}
		out = append(out, c.Clone())
	}
	return out
}

// Get returns a copy of the consultation.
func (s *ConsultationStore) Get(id string) (*models.Consultation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	c := s.consultations[idx].Clone()
	return &c, nil
}

// Create appends a consultation, assigning an id when missing.
func (s *ConsultationStore) Create(c *models.Consultation) {
	if c.ID == "" {
		c.ID = "consultation_" + uuid.NewString()
	}
	if c.RegisteredStudents == nil {
		c.RegisteredStudents = []string{}
	}
	s.mu.Lock()
	s.consultations = append(s.consultations, c.Clone())
	s.mu.Unlock()
}

// Update applies fn to a copy of the stored consultation and commits it when fn succeeds.
func (s *ConsultationStore) Update(id string, fn func(*models.Consultation) error) (*models.Consultation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	candidate := s.consultations[idx].Clone()
	if err := fn(&candidate); err != nil {
		return nil, err
	}
	candidate.ID = id
	s.consultations[idx] = candidate
	out := candidate.Clone()
	return &out, nil
}

// Register books a seat for studentID.
func (s *ConsultationStore) Register(id, studentID string) (*models.Consultation, error) {
	return s.Update(id, func(c *models.Consultation) error {
		return c.Register(studentID)
	})
}

// Unregister releases the seat of studentID. A student without a seat is not an error.
func (s *ConsultationStore) Unregister(id, studentID string) (*models.Consultation, bool, error) {
	var removed bool
	c, err := s.Update(id, func(c *models.Consultation) error {
		removed = c.Unregister(studentID)
		return nil
	})
	return c, removed, err
}

// Delete removes a consultation.
func (s *ConsultationStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.consultations = append(s.consultations[:idx], s.consultations[idx+1:]...)
	return nil
}

// MarshalState serialises the store for persistence.
func (s *ConsultationStore) MarshalState() ([]byte, error) {
	s.mu.RLock()
	state := models.ConsultationState{Consultations: cloneConsultations(s.consultations)}
	s.mu.RUnlock()
	return json.Marshal(state)
}

// UnmarshalState replaces the collection with a persisted one.
func (s *ConsultationStore) UnmarshalState(raw []byte) error {
	var state models.ConsultationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode consultation state: %w", err)
	}
	for i := range state.Consultations {
		if state.Consultations[i].RegisteredStudents == nil {
			state.Consultations[i].RegisteredStudents = []string{}
		}
	}
	s.mu.Lock()
	s.consultations = state.Consultations
	s.mu.Unlock()
	return nil
}

func (s *ConsultationStore) indexOf(id string) int {
	for i := range s.consultations {
		if s.consultations[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneConsultations(items []models.Consultation) []models.Consultation {
	out := make([]models.Consultation, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

func containsString(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
