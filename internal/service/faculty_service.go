package service

import "github.com/noah-isme/unischedule-api/internal/models"

var defaultFaculties = []models.Faculty{
	{Code: "fcs", Name: "Факультет строительства", Groups: []string{"ПГС-101", "ПГС-102", "ПГС-201", "ПГС-202", "СТР-101", "СТР-102"}},
	{Code: "fad", Name: "Факультет архитектуры и дизайна", Groups: []string{"АРХ-101", "АРХ-102", "ДИЗ-101", "ДИЗ-102", "ГРД-101", "ГРД-102"}},
	{Code: "fem", Name: "Факультет инженерных систем", Groups: []string{"ТГВ-101", "ТГВ-102", "ВВ-101", "ВВ-102", "ЭН-101", "ЭН-102"}},
	{Code: "fep", Name: "Факультет экономики и права", Groups: []string{"ЭК-101", "ЭК-102", "ЮР-101", "ЮР-102", "МЕН-101", "МЕН-102"}},
}

// FacultyService is the read-only directory of faculties and their groups.
type FacultyService struct {
	faculties []models.Faculty
}

// NewFacultyService builds the directory; nil selects the university's faculties.
func NewFacultyService(faculties []models.Faculty) *FacultyService {
	if faculties == nil {
		faculties = defaultFaculties
	}
	return &FacultyService{faculties: faculties}
}

// List returns every faculty.
func (s *FacultyService) List() []models.Faculty {
	out := make([]models.Faculty, len(s.faculties))
	for i, f := range s.faculties {
		f.Groups = append([]string(nil), f.Groups...)
		out[i] = f
	}
	return out
}

// Get returns the faculty with code.
func (s *FacultyService) Get(code string) (models.Faculty, bool) {
	for _, f := range s.faculties {
		if f.Code == code {
			return f, true
		}
	}
	return models.Faculty{}, false
}

// HasGroup reports whether group belongs to faculty.
func (s *FacultyService) HasGroup(faculty, group string) bool {
	f, ok := s.Get(faculty)
	if !ok {
		return false
	}
	for _, g := range f.Groups {
		if g == group {
			return true
		}
	}
	return false
}
