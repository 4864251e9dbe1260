package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/lunamail/lunamail/internal/middleware"
	"github.com/lunamail/lunamail/internal/models"
	"github.com/lunamail/lunamail/internal/repository"
)

// ListGroups handles GET /api/v1/groups
func (h *Handlers) ListGroups(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	filter := models.GroupFilter{
		OwnerID:  middleware.OwnerID(r),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		PageSize: pageSize,
	}

	groups, total, err := h.groups.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list groups", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to list groups", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, map[string]any{
		"groups":    groups,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type createGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ContactIDs  []string `json:"contact_ids"`
}

// CreateGroup handles POST /api/v1/groups
func (h *Handlers) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.apiError(w, http.StatusBadRequest, "Invalid request body", "INVALID_JSON")
		return
	}

	group := &models.Group{
		OwnerID:     middleware.OwnerID(r),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		ContactIDs:  req.ContactIDs,
	}

	err := h.groups.Create(r.Context(), group)
	if errors.Is(err, repository.ErrDuplicate) {
		h.apiError(w, http.StatusConflict, "Group name already exists", "DUPLICATE")
		return
	}
	if errors.Is(err, repository.ErrInvalidInput) {
		h.apiError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}
	if err != nil {
		h.logger.Error("failed to create group", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to create group", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusCreated, group)
}

// GetGroup handles GET /api/v1/groups/{id}
func (h *Handlers) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.apiError(w, http.StatusBadRequest, "Group ID is required", "MISSING_ID")
		return
	}

	group, err := h.groups.GetByID(r.Context(), middleware.OwnerID(r), id)
	if errors.Is(err, repository.ErrNotFound) {
		h.apiError(w, http.StatusNotFound, "Group not found", "NOT_FOUND")
		return
	}
	if err != nil {
		h.logger.Error("failed to get group", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to get group", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /api/v1/groups?id=...
func (h *Handlers) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.apiError(w, http.StatusBadRequest, "Group ID is required", "MISSING_ID")
		return
	}

	err := h.groups.Delete(r.Context(), middleware.OwnerID(r), id)
	if errors.Is(err, repository.ErrNotFound) {
		h.apiError(w, http.StatusNotFound, "Group not found", "NOT_FOUND")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete group", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to delete group", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
