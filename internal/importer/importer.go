// Package importer turns raw CSV uploads into validated, deduplicated
// contact creations and a structured import report.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/lunamail/lunamail/internal/metrics"
	"github.com/lunamail/lunamail/internal/models"
	"github.com/lunamail/lunamail/internal/repository"
)

// emailPattern accepts local@domain.tld with no embedded whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Importer reconciles uploaded CSV rows against an owner's contact store.
type Importer struct {
	contacts *repository.ContactRepository
	history  *History
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates an importer. history and m may be nil (no history recording,
// no metrics).
func New(contacts *repository.ContactRepository, history *History, m *metrics.Metrics, logger *slog.Logger) *Importer {
	return &Importer{
		contacts: contacts,
		history:  history,
		metrics:  m,
		logger:   logger.With("component", "importer"),
	}
}

// Import processes csvData for ownerID row by row, in file order. Every data
// row is accounted for exactly once: it either creates a contact or
// contributes one error message. Row-level failures never abort the batch.
func (im *Importer) Import(ctx context.Context, ownerID, csvData string) (*models.ImportReport, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	emailIdx := -1
	nameIdx := -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "email":
			emailIdx = i
		case "name":
			nameIdx = i
		}
	}
	if emailIdx == -1 {
		return nil, fmt.Errorf("email column not found in CSV")
	}

	// The store snapshot is an early-exit optimization; the database
	// uniqueness constraint remains the final arbiter under concurrency.
	seen, err := im.contacts.ListEmails(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing contacts: %w", err)
	}

	report := &models.ImportReport{ErrorMessages: []string{}}

	for row := 1; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.TotalProcessed++
			report.ErrorMessages = append(report.ErrorMessages,
				fmt.Sprintf("Row %d: %v", row, err))
			continue
		}

		report.TotalProcessed++

		email := ""
		if emailIdx < len(record) {
			email = strings.TrimSpace(record[emailIdx])
		}
		name := ""
		if nameIdx >= 0 && nameIdx < len(record) {
			name = strings.TrimSpace(record[nameIdx])
		}

		msg, imported := im.processRow(ctx, ownerID, row, email, name, seen)
		if imported {
			report.Imported++
		} else {
			report.ErrorMessages = append(report.ErrorMessages, msg)
		}
	}

	report.Errors = len(report.ErrorMessages)
	report.Summary = summarize(report)

	if im.metrics != nil {
		im.metrics.ContactsImported.Add(float64(report.Imported))
		im.metrics.ImportRowsRejected.Add(float64(report.Errors))
	}

	im.recordHistory(ownerID, report)

	return report, nil
}

// processRow validates and stores a single row. seen accumulates every email
// accepted so far, so duplicates within the same batch are rejected before
// they reach the store.
func (im *Importer) processRow(ctx context.Context, ownerID string, row int, email, name string, seen map[string]bool) (string, bool) {
	if email == "" {
		return fmt.Sprintf("Row %d: Missing email", row), false
	}

	if !emailPattern.MatchString(email) {
		return fmt.Sprintf("Row %d: Invalid email format: %s", row, email), false
	}

	lower := strings.ToLower(email)
	if seen[lower] {
		return fmt.Sprintf("Row %d: Email %s already exists", row, email), false
	}

	contact := &models.Contact{
		OwnerID: ownerID,
		Email:   lower,
		Name:    name,
	}
	if err := im.contacts.Create(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent writer beat us to it.
			seen[lower] = true
			return fmt.Sprintf("Row %d: Email %s already exists", row, email), false
		}
		im.logger.Error("contact create failed", "row", row, "email", lower, "error", err)
		return fmt.Sprintf("Row %d: Failed to create contact for %s", row, email), false
	}

	seen[lower] = true
	return "", true
}

func summarize(report *models.ImportReport) models.ImportSummary {
	summary := models.ImportSummary{SuccessRate: "0.0"}
	if report.TotalProcessed > 0 {
		rate := float64(report.Imported) / float64(report.TotalProcessed) * 100
		summary.SuccessRate = fmt.Sprintf("%.1f", rate)
	}
	for _, msg := range report.ErrorMessages {
		switch {
		case strings.Contains(msg, "already exists"):
			summary.DuplicatesSkipped++
		case strings.Contains(msg, "Invalid email format"):
			summary.InvalidEmails++
		case strings.Contains(msg, "Missing email"):
			summary.MissingEmails++
		}
	}
	return summary
}

// recordHistory appends the import outcome to the history log. Best effort:
// a failure here never changes the report.
func (im *Importer) recordHistory(ownerID string, report *models.ImportReport) {
	if im.history == nil {
		return
	}
	if err := im.history.Record(ownerID, report); err != nil {
		im.logger.Warn("failed to record import history", "owner", ownerID, "error", err)
	}
}
