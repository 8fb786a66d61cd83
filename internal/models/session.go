package models

import "time"

// SessionKind classifies a class session.
type SessionKind string

const (
	SessionLecture  SessionKind = "lecture"
	SessionPractice SessionKind = "practice"
	SessionLab      SessionKind = "lab"
)

// WeekParity says on which weeks a session meets.
type WeekParity string

const (
	ParityEven WeekParity = "even"
	ParityOdd  WeekParity = "odd"
	ParityBoth WeekParity = "both"
)

// Valid reports whether p is one of the known parities.
func (p WeekParity) Valid() bool {
	switch p {
	case ParityEven, ParityOdd, ParityBoth:
		return true
	}
	return false
}

// Valid reports whether k is one of the known session kinds.
func (k SessionKind) Valid() bool {
	switch k {
	case SessionLecture, SessionPractice, SessionLab:
		return true
	}
	return false
}

// Day-of-week bounds: 0 is Monday, 5 is Saturday.
const (
	FirstStudyDay = 0
	LastStudyDay  = 5
)

// ScheduleSession is one recurring class in a group's timetable.
type ScheduleSession struct {
	ID         string      `json:"id"`
	Subject    string      `json:"subject"`
	Teacher    string      `json:"teacher"`
	Room       string      `json:"room"`
	Building   string      `json:"building"`
	TimeSlot   string      `json:"time"`
	Kind       SessionKind `json:"type"`
	Faculty    string      `json:"faculty"`
	Group      string      `json:"group"`
	DayOfWeek  int         `json:"day_of_week"`
	WeekParity WeekParity  `json:"week_type"`
}

// SessionFilter narrows the raw session listing.
type SessionFilter struct {
	Faculty   string
	Group     string
	Teacher   string
	DayOfWeek *int
	Page      int
	PageSize  int
}

// WeekInfo describes the parity of the week containing a date.
type WeekInfo struct {
	WeekStart  time.Time  `json:"week_start"`
	WeekNumber int        `json:"week_number"`
	Parity     WeekParity `json:"parity"`
}

// WeekSchedule is the resolved timetable for one group and week.
type WeekSchedule struct {
	WeekInfo
	Faculty  string            `json:"faculty"`
	Group    string            `json:"group"`
	Sessions []ScheduleSession `json:"sessions"`
}
