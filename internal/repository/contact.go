package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lunamail/lunamail/internal/models"
)

type ContactRepository struct {
	db *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create inserts a new contact. Email is stored lowercased; the
// UNIQUE(owner_id, email) constraint is the final arbiter for duplicates,
// including concurrent creates.
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) error {
	contact.ID = uuid.New().String()
	contact.Email = strings.ToLower(strings.TrimSpace(contact.Email))
	contact.Name = strings.TrimSpace(contact.Name)
	contact.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO contacts (id, owner_id, email, name, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		contact.ID, contact.OwnerID, contact.Email, contact.Name, contact.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("contact %s: %w", contact.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// GetByID returns a contact owned by ownerID, or ErrNotFound.
func (r *ContactRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Contact, error) {
	contact := &models.Contact{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, email, name, created_at
		FROM contacts WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&contact.ID, &contact.OwnerID, &contact.Email, &contact.Name, &contact.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// List returns contacts for an owner, newest first, with optional
// case-insensitive substring search over email and name and optional
// pagination.
func (r *ContactRepository) List(ctx context.Context, filter models.ContactFilter) ([]models.Contact, int, error) {
	countQuery := "SELECT COUNT(*) FROM contacts WHERE owner_id = ?"
	args := []any{filter.OwnerID}

	if filter.Search != "" {
		countQuery += " AND (email LIKE ? OR name LIKE ?)"
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, email, name, created_at
		FROM contacts WHERE owner_id = ?`

	args = []any{filter.OwnerID}
	if filter.Search != "" {
		query += " AND (email LIKE ? OR name LIKE ?)"
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filter.PageSize > 0 {
		query += " LIMIT ?"
		args = append(args, filter.PageSize)
		if filter.Page > 1 {
			query += " OFFSET ?"
			args = append(args, (filter.Page-1)*filter.PageSize)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Email, &c.Name, &c.CreatedAt); err != nil {
			return nil, 0, err
		}
		contacts = append(contacts, c)
	}

	return contacts, total, rows.Err()
}

// ListEmails returns the set of emails already present for an owner,
// lowercased. Used by the import reconciler for its dedup pre-check.
func (r *ContactRepository) ListEmails(ctx context.Context, ownerID string) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT email FROM contacts WHERE owner_id = ?", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make(map[string]bool)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails[strings.ToLower(email)] = true
	}
	return emails, rows.Err()
}

// Delete removes a contact owned by ownerID. Deleting another owner's
// contact reports ErrNotFound without revealing its existence.
func (r *ContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM contacts WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
