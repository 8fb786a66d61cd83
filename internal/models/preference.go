package models

import "time"

// Preference is the per-user device state: theme and timetable selection.
type Preference struct {
	UserID           string    `json:"user_id"`
	Dark             bool      `json:"dark"`
	SelectedFaculty  string    `json:"selected_faculty,omitempty"`
	SelectedGroup    string    `json:"selected_group,omitempty"`
	CurrentWeekStart time.Time `json:"current_week_start,omitempty"`
}

// ThemePalette lists the colors used by the client for one theme.
type ThemePalette struct {
	Background    string `json:"background"`
	Surface       string `json:"surface"`
	Text          string `json:"text"`
	TextSecondary string `json:"text_secondary"`
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	Accent        string `json:"accent"`
	Success       string `json:"success"`
	Warning       string `json:"warning"`
	Error         string `json:"error"`
	Border        string `json:"border"`
}

// ThemeView is the theme preference together with its palette.
type ThemeView struct {
	Dark    bool         `json:"dark"`
	Palette ThemePalette `json:"palette"`
}

// Selection is the faculty/group/week a user is browsing.
type Selection struct {
	Faculty   string    `json:"faculty"`
	Group     string    `json:"group"`
	WeekStart time.Time `json:"week_start"`
}
