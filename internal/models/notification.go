package models

import "time"

// Severity is the visual kind of a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a message targeted by role, faculty and group. An empty target
// list means the dimension is not restricted.
type Notification struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	Severity        Severity   `json:"type"`
	IssuedAt        time.Time  `json:"date"`
	Read            bool       `json:"read"`
	TargetRoles     []UserRole `json:"target_roles,omitempty"`
	TargetFaculties []string   `json:"target_faculties,omitempty"`
	TargetGroups    []string   `json:"target_groups,omitempty"`
}

// Audience is the querying user's targeting triple. Faculty and Group are empty
// for users without them (teachers, admins).
type Audience struct {
	Role    UserRole
	Faculty string
	Group   string
}

// NotificationView decorates a notification with a relative date label.
type NotificationView struct {
	Notification
	DateLabel string `json:"date_label"`
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeveritySuccess, SeverityError:
		return true
	}
	return false
}
