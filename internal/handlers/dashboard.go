package handlers

import (
	"net/http"

	"github.com/lunamail/lunamail/internal/middleware"
	"github.com/lunamail/lunamail/internal/models"
)

// Dashboard handles GET /api/v1/dashboard, aggregating per-owner totals.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerID(r)

	_, contactTotal, err := h.contacts.List(r.Context(), models.ContactFilter{OwnerID: ownerID, PageSize: 1})
	if err != nil {
		h.logger.Error("failed to count contacts", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to load dashboard", "INTERNAL_ERROR")
		return
	}

	_, groupTotal, err := h.groups.List(r.Context(), models.GroupFilter{OwnerID: ownerID, PageSize: 1})
	if err != nil {
		h.logger.Error("failed to count groups", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to load dashboard", "INTERNAL_ERROR")
		return
	}

	stats, err := h.campaigns.Stats(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to load campaign stats", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to load dashboard", "INTERNAL_ERROR")
		return
	}

	imports, err := h.history.Recent(ownerID, 5)
	if err != nil {
		h.logger.Warn("failed to load import history", "error", err)
		imports = []models.ImportRecord{}
	}

	h.apiJSON(w, http.StatusOK, map[string]any{
		"contacts":       contactTotal,
		"groups":         groupTotal,
		"campaigns":      stats.Campaigns,
		"emails_sent":    stats.Sent,
		"emails_failed":  stats.Failed,
		"recent_imports": imports,
	})
}
