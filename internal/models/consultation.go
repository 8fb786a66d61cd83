package models

import "errors"

// Consultation is a bookable session with a fixed student capacity.
type Consultation struct {
	ID                 string   `json:"id"`
	Subject            string   `json:"subject"`
	Teacher            string   `json:"teacher"`
	Date               string   `json:"date"`
	Time               string   `json:"time"`
	Room               string   `json:"room"`
	Building           string   `json:"building"`
	Description        string   `json:"description"`
	MaxStudents        int      `json:"max_students"`
	RegisteredStudents []string `json:"registered_students"`
	Faculty            string   `json:"faculty"`
	Groups             []string `json:"groups"`
}

// IsFull reports whether no further registrations fit.
func (c *Consultation) IsFull() bool {
	return len(c.RegisteredStudents) >= c.MaxStudents
}

// IsRegistered reports whether studentID holds a seat.
func (c *Consultation) IsRegistered(studentID string) bool {
	for _, id := range c.RegisteredStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers never alias store slices.
func (c Consultation) Clone() Consultation {
	c.RegisteredStudents = append(make([]string, 0, len(c.RegisteredStudents)), c.RegisteredStudents...)
	c.Groups = append(make([]string, 0, len(c.Groups)), c.Groups...)
	return c
}

// ConsultationFilter narrows consultation listings.
type ConsultationFilter struct {
	Faculty string
	Group   string
}

// ConsultationView adds caller-relative predicates to a consultation.
type ConsultationView struct {
	Consultation
	IsFull         bool `json:"is_full"`
	IsRegistered   bool `json:"is_registered"`
	SeatsRemaining int  `json:"seats_remaining"`
}

// Registration outcomes rejected without mutating the consultation.
var (
	ErrAlreadyRegistered = errors.New("student already registered")
	ErrConsultationFull  = errors.New("consultation is full")
)

// Register appends studentID when a seat is free and the student is not yet listed.
func (c *Consultation) Register(studentID string) error {
	if c.IsRegistered(studentID) {
		return ErrAlreadyRegistered
	}
	if c.IsFull() {
		return ErrConsultationFull
	}
	c.RegisteredStudents = append(c.RegisteredStudents, studentID)
	return nil
}

// Unregister removes studentID and reports whether it was present.
func (c *Consultation) Unregister(studentID string) bool {
	for i, id := range c.RegisteredStudents {
		if id == studentID {
			c.RegisteredStudents = append(c.RegisteredStudents[:i:i], c.RegisteredStudents[i+1:]...)
			return true
		}
	}
	return false
}
