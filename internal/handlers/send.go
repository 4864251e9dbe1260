package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lunamail/lunamail/internal/mailer"
	"github.com/lunamail/lunamail/internal/middleware"
	"github.com/lunamail/lunamail/internal/models"
)

type sendRequest struct {
	Subject          string             `json:"subject"`
	Content          string             `json:"content"`
	Recipients       []models.Recipient `json:"recipients"`
	GroupID          string             `json:"group_id,omitempty"`
	FromEmail        string             `json:"fromEmail,omitempty"`
	PersonalizeNames *bool              `json:"personalizeNames,omitempty"`
	UseTemplate      *bool              `json:"useTemplate,omitempty"`
}

// SendEmails handles POST /api/v1/emails/send. The response reports
// per-recipient outcomes; partial failure is still a 200.
func (h *Handlers) SendEmails(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.apiError(w, http.StatusBadRequest, "Invalid request body", "INVALID_JSON")
		return
	}

	ownerID := middleware.OwnerID(r)

	if strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Content) == "" {
		h.apiError(w, http.StatusBadRequest, "Subject and content are required", "MISSING_CONTENT")
		return
	}

	recipients := req.Recipients
	if len(recipients) == 0 && req.GroupID != "" {
		group, err := h.groups.GetByID(r.Context(), ownerID, req.GroupID)
		if err != nil {
			h.apiError(w, http.StatusBadRequest, "Group not found", "GROUP_NOT_FOUND")
			return
		}
		for _, c := range group.Contacts {
			recipients = append(recipients, models.Recipient{Email: c.Email, Name: c.Name})
		}
	}

	if len(recipients) == 0 {
		h.apiError(w, http.StatusBadRequest, "No recipients specified", "NO_RECIPIENTS")
		return
	}

	// Both flags default to true.
	personalize := req.PersonalizeNames == nil || *req.PersonalizeNames
	useTemplate := req.UseTemplate == nil || *req.UseTemplate

	tmpl := models.Template{
		Subject:          req.Subject,
		Body:             req.Content,
		From:             strings.TrimSpace(req.FromEmail),
		PersonalizeNames: personalize,
		UseTemplate:      useTemplate,
	}

	// The send keeps going even if the client disconnects; recipients
	// should not receive a truncated campaign because a browser tab
	// closed.
	ctx := context.WithoutCancel(r.Context())

	report, err := h.mailer.SendCampaign(ctx, ownerID, tmpl, recipients)
	if errors.Is(err, mailer.ErrNoRecipients) {
		h.apiError(w, http.StatusBadRequest, "No recipients specified", "NO_RECIPIENTS")
		return
	}
	if err != nil {
		h.logger.Error("campaign send failed", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to send campaign", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, report)
}

// ListCampaigns handles GET /api/v1/campaigns
func (h *Handlers) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	filter := models.CampaignFilter{
		OwnerID:  middleware.OwnerID(r),
		Page:     page,
		PageSize: pageSize,
	}

	campaigns, total, err := h.campaigns.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list campaigns", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to list campaigns", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, map[string]any{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
