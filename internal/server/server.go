// Package server wires the application together and runs the HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lunamail/lunamail/internal/config"
	"github.com/lunamail/lunamail/internal/db"
	"github.com/lunamail/lunamail/internal/delivery"
	"github.com/lunamail/lunamail/internal/handlers"
	"github.com/lunamail/lunamail/internal/importer"
	"github.com/lunamail/lunamail/internal/mailer"
	"github.com/lunamail/lunamail/internal/metrics"
	"github.com/lunamail/lunamail/internal/middleware"
	"github.com/lunamail/lunamail/internal/repository"
)

type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      *db.DB
	history *importer.History
	users   *repository.UserRepository
	metrics *metrics.Metrics
	http    *http.Server
}

func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	history, err := importer.OpenHistory(cfg.Database.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open import history: %w", err)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	contacts := repository.NewContactRepository(database.DB)
	groups := repository.NewGroupRepository(database.DB)
	campaigns := repository.NewCampaignRepository(database.DB)
	users := repository.NewUserRepository(database.DB)

	imp := importer.New(contacts, history, m, logger)
	ml := mailer.New(provider, campaigns, m, logger, cfg.Sending)

	h := handlers.New(cfg, contacts, groups, campaigns, users, imp, history, ml, logger)

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		db:      database,
		history: history,
		users:   users,
		metrics: m,
	}

	s.http = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      s.setupRoutes(h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // bulk sends block the request
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newProvider builds the configured delivery backend.
func newProvider(cfg *config.Config) (delivery.Provider, error) {
	switch cfg.Delivery.Provider {
	case "smtp":
		var signer *delivery.Signer
		if cfg.Delivery.DKIM.Enabled {
			var err error
			signer, err = delivery.NewSignerFromFile(cfg.Delivery.DKIM.KeyFile, cfg.Delivery.DKIM.Domain, cfg.Delivery.DKIM.Selector)
			if err != nil {
				return nil, fmt.Errorf("failed to load DKIM key: %w", err)
			}
		}
		smtp := cfg.Delivery.SMTP
		return delivery.NewSMTPProvider(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.StartTLS, signer), nil
	default:
		return delivery.NewAPIProvider(cfg.Delivery.API.BaseURL, cfg.Delivery.API.APIKey), nil
	}
}

func (s *Server) setupRoutes(h *handlers.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger, s.metrics))
	r.Use(middleware.Recovery(s.logger))

	// Public routes
	r.Get("/health", h.Health)
	r.Handle("/metrics", s.metrics.Handler())
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)

	// Protected routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(s.users, s.logger))

		r.Get("/contacts", h.ListContacts)
		r.Post("/contacts", h.CreateContact)
		r.Delete("/contacts", h.DeleteContact)
		r.Post("/contacts/import", h.ImportContacts)
		r.Get("/contacts/export", h.ExportContacts)

		r.Get("/groups", h.ListGroups)
		r.Post("/groups", h.CreateGroup)
		r.Delete("/groups", h.DeleteGroup)
		r.Get("/groups/detail", h.GetGroup)

		r.Post("/emails/send", h.SendEmails)
		r.Get("/campaigns", h.ListCampaigns)
		r.Get("/dashboard", h.Dashboard)
	})

	return r
}

// Run starts the server and blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Run(ctx context.Context) error {
	go s.cleanupSessions(ctx)

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server", "addr", s.cfg.Server.ListenAddr, "tls", s.cfg.Server.TLS.Enabled)
		if s.cfg.Server.TLS.Enabled {
			errCh <- s.http.ListenAndServeTLS(s.cfg.Server.TLS.CertFile, s.cfg.Server.TLS.KeyFile)
		} else {
			errCh <- s.http.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
		s.close()
		return nil
	}
}

func (s *Server) close() {
	if err := s.history.Close(); err != nil {
		s.logger.Error("failed to close import history", "error", err)
	}
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
}

// cleanupSessions periodically removes expired sessions.
func (s *Server) cleanupSessions(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.users.DeleteExpiredSessions(ctx)
			if err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
			} else if n > 0 {
				s.logger.Info("removed expired sessions", "count", n)
			}
		}
	}
}
