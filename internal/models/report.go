package models

import "time"

// ImportReport holds the result of a CSV import operation. ErrorMessages is
// the full ordered list; truncation for display is the caller's concern.
type ImportReport struct {
	TotalProcessed int           `json:"totalProcessed"`
	Imported       int           `json:"imported"`
	Errors         int           `json:"errors"`
	ErrorMessages  []string      `json:"errorMessages"`
	Summary        ImportSummary `json:"summary"`
}

// ImportSummary carries derived rates for an import.
type ImportSummary struct {
	SuccessRate       string `json:"successRate"`
	DuplicatesSkipped int    `json:"duplicatesSkipped"`
	InvalidEmails     int    `json:"invalidEmails"`
	MissingEmails     int    `json:"missingEmails"`
}

// ImportRecord is one persisted import history entry.
type ImportRecord struct {
	TotalRows  int       `json:"total_rows"`
	Imported   int       `json:"imported"`
	Failed     int       `json:"failed"`
	Errors     []string  `json:"errors,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
}
