package models

import "time"

// Contact is a single address book entry owned by a user.
type Contact struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"-"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactFilter for listing contacts
type ContactFilter struct {
	OwnerID  string
	Search   string
	Page     int
	PageSize int
}
