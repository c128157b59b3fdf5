package model

import "time"

// Record is a single activity-log entry.
type Record struct {
	ID         string    `json:"id"`
	SiteID     string    `json:"site_id,omitempty"`
	ObjectID   string    `json:"object_id,omitempty"`
	Author     string    `json:"author"`
	AuthorRole string    `json:"author_role,omitempty"`
	Summary    string    `json:"summary"`
	IP         string    `json:"ip,omitempty"`
	Connector  string    `json:"connector"`
	Context    string    `json:"context"`
	Action     string    `json:"action"`
	Created    time.Time `json:"created"`
}
