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

type GroupRepository struct {
	db *sql.DB
}

func NewGroupRepository(db *sql.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a group together with its initial member set in one
// transaction. Every member must be a contact of the same owner; member
// order is preserved.
func (r *GroupRepository) Create(ctx context.Context, group *models.Group) error {
	group.Name = strings.TrimSpace(group.Name)
	group.Description = strings.TrimSpace(group.Description)
	if group.Name == "" {
		return fmt.Errorf("group name is required: %w", ErrInvalidInput)
	}
	if len(group.ContactIDs) == 0 {
		return fmt.Errorf("at least one contact must be selected: %w", ErrInvalidInput)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Verify every member belongs to the owner before inserting anything.
	var invalid []string
	for _, contactID := range group.ContactIDs {
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM contacts WHERE id = ? AND owner_id = ?",
			contactID, group.OwnerID,
		).Scan(&one)
		if err == sql.ErrNoRows {
			invalid = append(invalid, contactID)
			continue
		}
		if err != nil {
			return err
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid contact IDs: %s: %w", strings.Join(invalid, ", "), ErrInvalidInput)
	}

	group.ID = uuid.New().String()
	group.CreatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO groups (id, owner_id, name, description, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.OwnerID, group.Name, group.Description, group.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("group %s: %w", group.Name, ErrDuplicate)
		}
		return fmt.Errorf("failed to create group: %w", err)
	}

	for i, contactID := range group.ContactIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO group_contacts (group_id, contact_id, position)
			VALUES (?, ?, ?)`,
			group.ID, contactID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to add group member: %w", err)
		}
	}

	return tx.Commit()
}

// GetByID returns a group with its members in insertion order, or
// ErrNotFound.
func (r *GroupRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Group, error) {
	group := &models.Group{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, name, description, created_at
		FROM groups WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&group.ID, &group.OwnerID, &group.Name, &group.Description, &group.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.owner_id, c.email, c.name, c.created_at
		FROM group_contacts gc
		JOIN contacts c ON c.id = gc.contact_id
		WHERE gc.group_id = ?
		ORDER BY gc.position`, group.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Email, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		group.Contacts = append(group.Contacts, c)
		group.ContactIDs = append(group.ContactIDs, c.ID)
	}

	return group, rows.Err()
}

// List returns groups for an owner, newest first.
func (r *GroupRepository) List(ctx context.Context, filter models.GroupFilter) ([]models.Group, int, error) {
	countQuery := "SELECT COUNT(*) FROM groups WHERE owner_id = ?"
	args := []any{filter.OwnerID}

	if filter.Search != "" {
		countQuery += " AND (name LIKE ? OR description LIKE ?)"
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, name, description, created_at
		FROM groups WHERE owner_id = ?`

	args = []any{filter.OwnerID}
	if filter.Search != "" {
		query += " AND (name LIKE ? OR description LIKE ?)"
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

	groups := []models.Group{}
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, 0, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range groups {
		ids, err := r.memberIDs(ctx, groups[i].ID)
		if err != nil {
			return nil, 0, err
		}
		groups[i].ContactIDs = ids
	}

	return groups, total, nil
}

func (r *GroupRepository) memberIDs(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT contact_id FROM group_contacts
		WHERE group_id = ? ORDER BY position`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Delete removes a group owned by ownerID, or reports ErrNotFound.
func (r *GroupRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM groups WHERE id = ? AND owner_id = ?", id, ownerID)
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
