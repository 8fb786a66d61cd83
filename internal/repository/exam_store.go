package repository

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// ExamStore owns the exam calendar.
type ExamStore struct {
	mu    sync.RWMutex
	exams []models.Exam
}

// NewExamStore creates a store from the given exams.
func NewExamStore(items []models.Exam) *ExamStore {
	return &ExamStore{exams: cloneExams(items)}
}

// List returns exams matching the filter in insertion order.
func (s *ExamStore) List(filter models.ExamFilter) []models.Exam {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Exam, 0, len(s.exams))
	for _, e := range s.exams {
		if filter.Faculty != "" && e.Faculty != filter.Faculty {
			continue
		}
		if filter.Group != "" && !containsString(e.Groups, filter.Group) {
			continue
		}
		out = append(out, cloneExam(e))
	}
	return out
}

// Get returns a copy of the exam.
func (s *ExamStore) Get(id string) (*models.Exam, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	e := cloneExam(s.exams[idx])
	return &e, nil
}

// Create appends an exam, assigning an id when missing.
func (s *ExamStore) Create(e *models.Exam) {
	if e.ID == "" {
		e.ID = "exam_" + uuid.NewString()
	}
	s.mu.Lock()
	s.exams = append(s.exams, cloneExam(*e))
	s.mu.Unlock()
}

// Update applies fn to a copy of the stored exam and commits it when fn succeeds.
func (s *ExamStore) Update(id string, fn func(*models.Exam) error) (*models.Exam, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	candidate := cloneExam(s.exams[idx])
	if err := fn(&candidate); err != nil {
		return nil, err
	}
	candidate.ID = id
	s.exams[idx] = candidate
	out := cloneExam(candidate)
	return &out, nil
}

// Delete removes an exam.
func (s *ExamStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.exams = append(s.exams[:idx], s.exams[idx+1:]...)
	return nil
}

// MarshalState serialises the store for persistence.
func (s *ExamStore) MarshalState() ([]byte, error) {
	s.mu.RLock()
	state := models.ExamState{Exams: cloneExams(s.exams)}
	s.mu.RUnlock()
	return json.Marshal(state)
}

// UnmarshalState replaces the collection with a persisted one.
func (s *ExamStore) UnmarshalState(raw []byte) error {
	var state models.ExamState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode exam state: %w", err)
	}
	s.mu.Lock()
	s.exams = state.Exams
	s.mu.Unlock()
	return nil
}

func (s *ExamStore) indexOf(id string) int {
	for i := range s.exams {
		if s.exams[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneExam(e models.Exam) models.Exam {
	e.Groups = append(make([]string, 0, len(e.Groups)), e.Groups...)
	return e
}

func cloneExams(items []models.Exam) []models.Exam {
	out := make([]models.Exam, len(items))
	for i := range items {
		out[i] = cloneExam(items[i])
	}
	return out
}
