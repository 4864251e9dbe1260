package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lunamail/lunamail/internal/models"
)

type CampaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create persists one campaign summary row.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.ID = uuid.New().String()
	if campaign.SentAt.IsZero() {
		campaign.SentAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, owner_id, subject, body, sent_at,
			recipient_count, sent_count, failed_count, personalized, templated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		campaign.ID, campaign.OwnerID, campaign.Subject, campaign.Body, campaign.SentAt,
		campaign.RecipientCount, campaign.SentCount, campaign.FailedCount,
		campaign.Personalized, campaign.Templated,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}
	return nil
}

// GetByID returns a campaign owned by ownerID, or ErrNotFound.
func (r *CampaignRepository) GetByID(ctx context.Context, ownerID, id string) (*models.Campaign, error) {
	c := &models.Campaign{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, owner_id, subject, body, sent_at,
			recipient_count, sent_count, failed_count, personalized, templated
		FROM campaigns WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&c.ID, &c.OwnerID, &c.Subject, &c.Body, &c.SentAt,
		&c.RecipientCount, &c.SentCount, &c.FailedCount, &c.Personalized, &c.Templated)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns campaigns for an owner, most recent first.
func (r *CampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM campaigns WHERE owner_id = ?", filter.OwnerID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, owner_id, subject, body, sent_at,
			recipient_count, sent_count, failed_count, personalized, templated
		FROM campaigns WHERE owner_id = ?
		ORDER BY sent_at DESC, id DESC`
	args := []any{filter.OwnerID}

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

	campaigns := []models.Campaign{}
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Subject, &c.Body, &c.SentAt,
			&c.RecipientCount, &c.SentCount, &c.FailedCount, &c.Personalized, &c.Templated); err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, total, rows.Err()
}

// Stats aggregates campaign and delivery totals for an owner.
func (r *CampaignRepository) Stats(ctx context.Context, ownerID string) (models.CampaignStats, error) {
	var st models.CampaignStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(sent_count), 0),
		       COALESCE(SUM(failed_count), 0)
		FROM campaigns WHERE owner_id = ?`, ownerID,
	).Scan(&st.Campaigns, &st.Sent, &st.Failed)
	if err != nil {
		return models.CampaignStats{}, err
	}
	return st, nil
}
