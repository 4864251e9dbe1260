package importer

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lunamail/lunamail/internal/metrics"
	"github.com/lunamail/lunamail/internal/models"
	"github.com/lunamail/lunamail/internal/repository"
)

func setupTestImporter(t *testing.T) (*Importer, *repository.ContactRepository, string) {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	migrations := []string{
		`CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE contacts (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			email TEXT NOT NULL,
			name TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(owner_id, email)
		)`,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			t.Fatalf("migration failed: %v", err)
		}
	}

	owner := "owner-1"
	if _, err := db.Exec("INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)", owner, "owner@example.com", "x"); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	contacts := repository.NewContactRepository(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	imp := New(contacts, nil, metrics.New(), logger)

	return imp, contacts, owner
}

func TestImport_Valid(t *testing.T) {
	imp, contacts, owner := setupTestImporter(t)

	csv := "email,name\nalice@example.com,Alice\nbob@example.com,Bob\n"
	report, err := imp.Import(context.Background(), owner, csv)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report.TotalProcessed != 2 {
		t.Errorf("expected 2 processed, got %d", report.TotalProcessed)
	}
	if report.Imported != 2 {
		t.Errorf("expected 2 imported, got %d", report.Imported)
	}
	if report.Errors != 0 {
		t.Errorf("expected 0 errors, got %d: %v", report.Errors, report.ErrorMessages)
	}
	if report.Summary.SuccessRate != "100.0" {
		t.Errorf("expected success rate '100.0', got '%s'", report.Summary.SuccessRate)
	}

	emails, err := contacts.ListEmails(context.Background(), owner)
	if err != nil {
		t.Fatalf("failed to list emails: %v", err)
	}
	if !emails["alice@example.com"] || !emails["bob@example.com"] {
		t.Errorf("expected both contacts stored, got %v", emails)
	}
}

func TestImport_ColumnOrderAndCase(t *testing.T) {
	imp, _, owner := setupTestImporter(t)

	// Name before Email, mixed-case headers
	csv := "Name,Email\nAlice,alice@example.com\n"
	report, err := imp.Import(context.Background(), owner, csv)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if report.Imported != 1 {
		t.Errorf("expected 1 imported, got %d: %v", report.Imported, report.ErrorMessages)
	}
}

func TestImport_NoEmailColumn(t *testing.T) {
	imp, _, owner := setupTestImporter(t)

	_, err := imp.Import(context.Background(), owner, "name,phone\nAlice,123\n")
	if err == nil {
		t.Fatal("expected error for missing email column")
	}
}

func TestImport_RowErrors(t *testing.T) {
	imp, _, owner := setupTestImporter(t)

	csv := strings.Join([]string{
		"email,name",
		",NoEmail",
		"not-an-email,Bad",
		"good@example.com,Good",
	}, "\n")

	report, err := imp.Import(context.Background(), owner, csv)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report.TotalProcessed != 3 {
		t.Errorf("expected 3 processed, got %d", report.TotalProcessed)
	}
	if report.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", report.Imported)
	}
	if report.Errors != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", report.Errors, report.ErrorMessages)
	}

	if report.ErrorMessages[0] != "Row 1: Missing email" {
		t.Errorf("unexpected first error: %q", report.ErrorMessages[0])
	}
	if report.ErrorMessages[1] != "Row 2: Invalid email format: not-an-email" {
		t.Errorf("unexpected second error: %q", report.ErrorMessages[1])
	}

	if report.Summary.MissingEmails != 1 {
		t.Errorf("expected 1 missing email, got %d", report.Summary.MissingEmails)
	}
	if report.Summary.InvalidEmails != 1 {
		t.Errorf("expected 1 invalid email, got %d", report.Summary.InvalidEmails)
	}
}

func TestImport_DuplicateWithinBatch(t *testing.T) {
	imp, _, owner := setupTestImporter(t)

	csv := "email,name\ndup@example.com,First\nDup@Example.com,Second\n"
	report, err := imp.Import(context.Background(), owner, csv)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", report.Imported)
	}
	if report.Errors != 1 {
		t.Fatalf("expected 1 error, got %d: %v", report.Errors, report.ErrorMessages)
	}
	// The message carries the email exactly as it appeared in the row
	if report.ErrorMessages[0] != "Row 2: Email Dup@Example.com already exists" {
		t.Errorf("unexpected error message: %q", report.ErrorMessages[0])
	}
	if report.Summary.DuplicatesSkipped != 1 {
		t.Errorf("expected 1 duplicate skipped, got %d", report.Summary.DuplicatesSkipped)
	}
}

func TestImport_DuplicateAgainstStore(t *testing.T) {
	imp, contacts, owner := setupTestImporter(t)

	existing := &models.Contact{OwnerID: owner, Email: "alice@example.com"}
	if err := contacts.Create(context.Background(), existing); err != nil {
		t.Fatalf("failed to seed contact: %v", err)
	}

	report, err := imp.Import(context.Background(), owner, "email\nalice@example.com\nnew@example.com\n")
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report.Imported != 1 {
		t.Errorf("expected 1 imported, got %d", report.Imported)
	}
	if report.Errors != 1 || !strings.Contains(report.ErrorMessages[0], "already exists") {
		t.Errorf("expected duplicate error, got %v", report.ErrorMessages)
	}
}

func TestImport_AllRowsAccountedFor(t *testing.T) {
	imp, _, owner := setupTestImporter(t)

	csv := strings.Join([]string{
		"email,name",
		"a@example.com,A",
		"bad",
		"a@example.com,Again",
		"b@example.com,B",
		",",
	}, "\n")

	report, err := imp.Import(context.Background(), owner, csv)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}

	if report.Imported+report.Errors != report.TotalProcessed {
		t.Errorf("rows not accounted for: imported=%d errors=%d total=%d",
			report.Imported, report.Errors, report.TotalProcessed)
	}
	if len(report.ErrorMessages) != report.Errors {
		t.Errorf("error count mismatch: %d messages, Errors=%d", len(report.ErrorMessages), report.Errors)
	}
}

func TestImport_SuccessRate(t *testing.T) {
	imp, _, owner := setupTestImporter(t)

	// 2 of 3 rows import
	csv := "email\na@example.com\nbad-row\nb@example.com\n"
	report, err := imp.Import(context.Background(), owner, csv)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if report.Summary.SuccessRate != "66.7" {
		t.Errorf("expected success rate '66.7', got '%s'", report.Summary.SuccessRate)
	}
}
