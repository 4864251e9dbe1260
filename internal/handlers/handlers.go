// Package handlers implements the JSON HTTP API.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lunamail/lunamail/internal/config"
	"github.com/lunamail/lunamail/internal/importer"
	"github.com/lunamail/lunamail/internal/mailer"
	"github.com/lunamail/lunamail/internal/repository"
)

type Handlers struct {
	cfg       *config.Config
	contacts  *repository.ContactRepository
	groups    *repository.GroupRepository
	campaigns *repository.CampaignRepository
	users     *repository.UserRepository
	importer  *importer.Importer
	history   *importer.History
	mailer    *mailer.Mailer
	logger    *slog.Logger
}

func New(cfg *config.Config, contacts *repository.ContactRepository, groups *repository.GroupRepository,
	campaigns *repository.CampaignRepository, users *repository.UserRepository,
	imp *importer.Importer, history *importer.History, m *mailer.Mailer, logger *slog.Logger) *Handlers {
	return &Handlers{
		cfg:       cfg,
		contacts:  contacts,
		groups:    groups,
		campaigns: campaigns,
		users:     users,
		importer:  imp,
		history:   history,
		mailer:    m,
		logger:    logger,
	}
}

// APIErrorResponse represents an API error
type APIErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Health check
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// apiJSON sends a JSON response
func (h *Handlers) apiJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

// apiError sends an error response
func (h *Handlers) apiError(w http.ResponseWriter, status int, message, code string) {
	h.apiJSON(w, status, APIErrorResponse{
		Error: message,
		Code:  code,
	})
}

// pagination extracts page/page_size query parameters with defaults.
func pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return page, pageSize
}
