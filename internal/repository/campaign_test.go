package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lunamail/lunamail/internal/models"
)

func TestCampaignRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	first := &models.Campaign{
		OwnerID:        owner,
		Subject:        "Hello {{NAME}}",
		Body:           "Welcome aboard",
		SentAt:         time.Now().Add(-time.Hour),
		RecipientCount: 10,
		SentCount:      8,
		FailedCount:    2,
		Personalized:   true,
		Templated:      true,
	}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}

	second := &models.Campaign{
		OwnerID:        owner,
		Subject:        "Follow up",
		Body:           "Still here",
		SentAt:         time.Now(),
		RecipientCount: 5,
		SentCount:      5,
	}
	if err := repo.Create(ctx, second); err != nil {
		t.Fatalf("failed to create campaign: %v", err)
	}

	campaigns, total, err := repo.List(ctx, models.CampaignFilter{OwnerID: owner})
	if err != nil {
		t.Fatalf("failed to list campaigns: %v", err)
	}
	if total != 2 || len(campaigns) != 2 {
		t.Fatalf("expected 2 campaigns, got total=%d len=%d", total, len(campaigns))
	}
	// Most recent first
	if campaigns[0].Subject != "Follow up" {
		t.Errorf("expected most recent campaign first, got '%s'", campaigns[0].Subject)
	}
	if !campaigns[1].Personalized || !campaigns[1].Templated {
		t.Error("expected personalized and templated flags to round-trip")
	}
}

func TestCampaignRepository_Stats(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	other := createTestUser(t, db, "other@example.com")
	repo := NewCampaignRepository(db)
	ctx := context.Background()

	for _, c := range []models.Campaign{
		{OwnerID: owner, Subject: "A", Body: "a", RecipientCount: 10, SentCount: 8, FailedCount: 2},
		{OwnerID: owner, Subject: "B", Body: "b", RecipientCount: 4, SentCount: 4},
		{OwnerID: other, Subject: "C", Body: "c", RecipientCount: 100, SentCount: 100},
	} {
		campaign := c
		if err := repo.Create(ctx, &campaign); err != nil {
			t.Fatalf("failed to create campaign: %v", err)
		}
	}

	stats, err := repo.Stats(ctx, owner)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.Campaigns != 2 {
		t.Errorf("expected 2 campaigns, got %d", stats.Campaigns)
	}
	if stats.Sent != 12 {
		t.Errorf("expected 12 sent, got %d", stats.Sent)
	}
	if stats.Failed != 2 {
		t.Errorf("expected 2 failed, got %d", stats.Failed)
	}
}

func TestCampaignRepository_Stats_Empty(t *testing.T) {
	db := setupTestDB(t)
	owner := createTestUser(t, db, "owner@example.com")
	repo := NewCampaignRepository(db)

	stats, err := repo.Stats(context.Background(), owner)
	if err != nil {
		t.Fatalf("failed to get stats: %v", err)
	}
	if stats.Campaigns != 0 || stats.Sent != 0 || stats.Failed != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}
