package model

import "time"

// User represents an account that may hold a private feed key.
type User struct {
	ID          string    `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name,omitempty"`
	Roles       []string  `json:"roles"`
	SuperAdmin  bool      `json:"super_admin"`
	CreatedAt   time.Time `json:"created_at"`
}
