package models

import (
	"encoding/json"
	"time"
)

// StoreName keys a persisted container.
type StoreName string

const (
	StoreSchedule      StoreName = "schedule"
	StoreConsultations StoreName = "consultations"
	StoreNotifications StoreName = "notifications"
	StoreExams         StoreName = "exams"
	StoreAuth          StoreName = "auth"
	StorePreferences   StoreName = "preferences"
)

// AllStores lists every persisted container in hydration order.
var AllStores = []StoreName{
	StoreAuth,
	StorePreferences,
	StoreSchedule,
	StoreNotifications,
	StoreConsultations,
	StoreExams,
}

// SnapshotVersion is the current envelope format.
const SnapshotVersion = 1

// Snapshot is the versioned blob written for one store.
type Snapshot struct {
	Version int             `json:"version"`
	Store   StoreName       `json:"store"`
	SavedAt time.Time       `json:"saved_at"`
	State   json.RawMessage `json:"state"`
}

// ScheduleState is the persisted form of the schedule store.
type ScheduleState struct {
	Sessions []ScheduleSession `json:"sessions"`
}

// NotificationState is the persisted form of the notification store. UnreadCount is
// informational; it is recomputed on load.
type NotificationState struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unread_count"`
}

// ConsultationState is the persisted form of the consultation store.
type ConsultationState struct {
	Consultations []Consultation `json:"consultations"`
}

// ExamState is the persisted form of the exam store.
type ExamState struct {
	Exams []Exam `json:"exams"`
}

// AuthState is the persisted account directory.
type AuthState struct {
	Users []User `json:"users"`
}

// PreferenceState is the persisted per-user preferences.
type PreferenceState struct {
	Preferences []Preference `json:"preferences"`
}
