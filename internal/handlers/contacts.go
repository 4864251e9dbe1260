package handlers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/lunamail/lunamail/internal/middleware"
	"github.com/lunamail/lunamail/internal/models"
	"github.com/lunamail/lunamail/internal/repository"
)

// maxImportSize caps the request body for CSV imports.
const maxImportSize = 10 << 20 // 10 MB

// ListContacts handles GET /api/v1/contacts
func (h *Handlers) ListContacts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	filter := models.ContactFilter{
		OwnerID:  middleware.OwnerID(r),
		Search:   r.URL.Query().Get("search"),
		Page:     page,
		PageSize: pageSize,
	}

	contacts, total, err := h.contacts.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list contacts", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to list contacts", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, map[string]any{
		"contacts":  contacts,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

type createContactRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CreateContact handles POST /api/v1/contacts
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.apiError(w, http.StatusBadRequest, "Invalid request body", "INVALID_JSON")
		return
	}

	if strings.TrimSpace(req.Email) == "" {
		h.apiError(w, http.StatusBadRequest, "Email is required", "MISSING_EMAIL")
		return
	}

	contact := &models.Contact{
		OwnerID: middleware.OwnerID(r),
		Email:   req.Email,
		Name:    strings.TrimSpace(req.Name),
	}

	err := h.contacts.Create(r.Context(), contact)
	if errors.Is(err, repository.ErrDuplicate) {
		h.apiError(w, http.StatusConflict, "Contact already exists", "DUPLICATE")
		return
	}
	if err != nil {
		h.logger.Error("failed to create contact", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to create contact", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusCreated, contact)
}

// DeleteContact handles DELETE /api/v1/contacts?id=...
func (h *Handlers) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		h.apiError(w, http.StatusBadRequest, "Contact ID is required", "MISSING_ID")
		return
	}

	err := h.contacts.Delete(r.Context(), middleware.OwnerID(r), id)
	if errors.Is(err, repository.ErrNotFound) {
		h.apiError(w, http.StatusNotFound, "Contact not found", "NOT_FOUND")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete contact", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to delete contact", "INTERNAL_ERROR")
		return
	}

	h.apiJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

type importRequest struct {
	CSVData string `json:"csvData"`
}

// ImportContacts handles POST /api/v1/contacts/import. The body is either
// raw CSV (text/csv) or a JSON object with a csvData field.
func (h *Handlers) ImportContacts(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		h.apiError(w, http.StatusBadRequest, "Failed to read request body", "INVALID_BODY")
		return
	}

	csvData := string(body)
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var req importRequest
		if err := json.Unmarshal(body, &req); err != nil {
			h.apiError(w, http.StatusBadRequest, "Invalid request body", "INVALID_JSON")
			return
		}
		csvData = req.CSVData
	}

	if strings.TrimSpace(csvData) == "" {
		h.apiError(w, http.StatusBadRequest, "CSV data is required", "MISSING_CSV")
		return
	}

	report, err := h.importer.Import(r.Context(), middleware.OwnerID(r), csvData)
	if err != nil {
		h.apiError(w, http.StatusBadRequest, err.Error(), "INVALID_CSV")
		return
	}

	h.apiJSON(w, http.StatusOK, report)
}

// ExportContacts handles GET /api/v1/contacts/export
func (h *Handlers) ExportContacts(w http.ResponseWriter, r *http.Request) {
	filter := models.ContactFilter{OwnerID: middleware.OwnerID(r)}
	contacts, _, err := h.contacts.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to export contacts", "error", err)
		h.apiError(w, http.StatusInternalServerError, "Failed to export contacts", "INTERNAL_ERROR")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="contacts.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{"email", "name", "created_at"})
	for _, c := range contacts {
		cw.Write([]string{c.Email, c.Name, c.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("failed to write CSV export", "error", err)
	}
}
