package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// WeekCalendar derives week boundaries and parity relative to the academic epoch.
// All arithmetic uses civil dates in the academic location, so daylight saving
// transitions never shift a week number.
type WeekCalendar struct {
	epoch time.Time
	loc   *time.Location
}

// NewWeekCalendar anchors the calendar at epoch (midnight of September 1).
func NewWeekCalendar(epoch time.Time) *WeekCalendar {
	loc := epoch.Location()
	if loc == nil {
		loc = time.UTC
	}
	return &WeekCalendar{epoch: epoch, loc: loc}
}

// Location returns the academic timezone.
func (c *WeekCalendar) Location() *time.Location { return c.loc }

// WeekStart rolls t back to Monday midnight of its week.
func (c *WeekCalendar) WeekStart(t time.Time) time.Time {
	t = t.In(c.loc)
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, c.loc)
}

// WeekNumber is ceil(days between epoch and the Monday of t, divided by seven).
func (c *WeekCalendar) WeekNumber(t time.Time) int {
	days := civilDaysBetween(c.epoch.In(c.loc), c.WeekStart(t))
	if days > 0 {
		return (days + 6) / 7
	}
	// Truncation toward zero is the ceiling for non-positive values.
	return days / 7
}

// IsEvenWeek reports whether the week containing t is even.
func (c *WeekCalendar) IsEvenWeek(t time.Time) bool {
	return c.WeekNumber(t)%2 == 0
}

// Parity returns even or odd for the week containing t.
func (c *WeekCalendar) Parity(t time.Time) models.WeekParity {
	if c.IsEvenWeek(t) {
		return models.ParityEven
	}
	return models.ParityOdd
}

// Info describes the week containing t.
func (c *WeekCalendar) Info(t time.Time) models.WeekInfo {
	return models.WeekInfo{
		WeekStart:  c.WeekStart(t),
		WeekNumber: c.WeekNumber(t),
		Parity:     c.Parity(t),
	}
}

// ResolveWeek returns the sessions of faculty/group that meet in the week
// containing weekStart, preserving the order of all.
func (c *WeekCalendar) ResolveWeek(all []models.ScheduleSession, weekStart time.Time, faculty, group string) []models.ScheduleSession {
	even := c.IsEvenWeek(weekStart)
	out := make([]models.ScheduleSession, 0)
	for _, s := range all {
		if s.Faculty != faculty || s.Group != group {
			continue
		}
		if !MeetsInWeek(s.WeekParity, even) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// MeetsInWeek reports whether a session with parity p meets in an even (or odd) week.
func MeetsInWeek(p models.WeekParity, even bool) bool {
	switch p {
	case models.ParityBoth:
		return true
	case models.ParityEven:
		return even
	case models.ParityOdd:
		return !even
	}
	return false
}

// SortByDayAndTime orders sessions by day of week, then by the start of their
// time slot. Slots that cannot be parsed sort after parsable ones.
func SortByDayAndTime(sessions []models.ScheduleSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].DayOfWeek != sessions[j].DayOfWeek {
			return sessions[i].DayOfWeek < sessions[j].DayOfWeek
		}
		return slotStart(sessions[i].TimeSlot) < slotStart(sessions[j].TimeSlot)
	})
}

// slotStart returns minutes since midnight of the "H:MM" prefix of a "H:MM-H:MM" label.
func slotStart(slot string) int {
	start, _, _ := strings.Cut(slot, "-")
	h, m, ok := strings.Cut(strings.TrimSpace(start), ":")
	if !ok {
		return 1 << 30
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 1 << 30
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 1 << 30
	}
	return hours*60 + minutes
}

func civilDaysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}
