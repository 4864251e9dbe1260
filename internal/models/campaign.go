package models

import "time"

// Campaign is the persisted record of one completed bulk-send operation.
// It is written once after all per-recipient sends have been attempted and
// never mutated.
type Campaign struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"-"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	SentAt         time.Time `json:"sent_at"`
	RecipientCount int       `json:"recipient_count"`
	SentCount      int       `json:"sent_count"`
	FailedCount    int       `json:"failed_count"`
	Personalized   bool      `json:"personalized"`
	Templated      bool      `json:"templated"`
}

// CampaignStats aggregates campaign totals for an owner.
type CampaignStats struct {
	Campaigns int `json:"campaigns"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// CampaignFilter for listing campaigns
type CampaignFilter struct {
	OwnerID  string
	Page     int
	PageSize int
}

// Recipient is an email/name pair targeted by a send operation, derived
// from a contact or group at send time. Not persisted.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Template carries the composed campaign content for one send operation.
type Template struct {
	Subject          string
	Body             string
	From             string
	PersonalizeNames bool
	UseTemplate      bool
}

// SendResult records one successful delivery.
type SendResult struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// SendError records one failed delivery.
type SendError struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// SendReport is returned to the caller after a bulk send. Partial success is
// a normal outcome: all-failed still produces a report, not an error.
type SendReport struct {
	Sent    int          `json:"sent"`
	Failed  int          `json:"failed"`
	Total   int          `json:"total"`
	Results []SendResult `json:"results"`
	Errors  []SendError  `json:"errors"`
	Summary SendSummary  `json:"summary"`
}

// SendSummary echoes the send flags and the overall success rate.
type SendSummary struct {
	SuccessRate  string `json:"success_rate"`
	Personalized bool   `json:"personalized"`
	Templated    bool   `json:"templated"`
}
