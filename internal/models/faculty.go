package models

// Faculty is an academic unit and its student groups.
type Faculty struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}
