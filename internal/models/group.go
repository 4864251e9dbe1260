package models

import "time"

// Group is a named, ordered set of a user's contacts.
type Group struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"-"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ContactIDs  []string  `json:"contact_ids"`
	Contacts    []Contact `json:"contacts,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupFilter for listing groups
type GroupFilter struct {
	OwnerID  string
	Search   string
	Page     int
	PageSize int
}
