// Package mailer orchestrates bulk campaign sends: personalization,
// sequential delivery with pacing, and campaign bookkeeping.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lunamail/lunamail/internal/config"
	"github.com/lunamail/lunamail/internal/delivery"
	"github.com/lunamail/lunamail/internal/metrics"
	"github.com/lunamail/lunamail/internal/models"
	"github.com/lunamail/lunamail/internal/personalize"
	"github.com/lunamail/lunamail/internal/repository"
)

// ErrNoRecipients is returned when a send is requested with an empty
// recipient list.
var ErrNoRecipients = errors.New("no recipients specified")

// Mailer sends campaigns through a delivery provider, one recipient at a
// time, and records the outcome.
type Mailer struct {
	provider  delivery.Provider
	campaigns *repository.CampaignRepository
	metrics   *metrics.Metrics
	logger    *slog.Logger
	cfg       config.SendingConfig
}

// New creates a Mailer.
func New(provider delivery.Provider, campaigns *repository.CampaignRepository, m *metrics.Metrics, logger *slog.Logger, cfg config.SendingConfig) *Mailer {
	return &Mailer{
		provider:  provider,
		campaigns: campaigns,
		metrics:   m,
		logger:    logger.With("component", "mailer"),
		cfg:       cfg,
	}
}

// SendCampaign attempts delivery to every recipient in order. A failed
// recipient never aborts the run: failures are collected alongside
// successes and the full report is returned. The delivery pace is fixed
// by the configured send delay.
func (m *Mailer) SendCampaign(ctx context.Context, ownerID string, tmpl models.Template, recipients []models.Recipient) (*models.SendReport, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	from := tmpl.From
	if from == "" {
		from = m.cfg.DefaultFrom
	}

	fixed := personalize.Fixed{
		CompanyName:        m.cfg.CompanyName,
		NewsletterSubtitle: m.cfg.NewsletterSubtitle,
		CompanyAddress:     m.cfg.CompanyAddress,
	}

	m.logger.Info("starting campaign send",
		"owner_id", ownerID,
		"recipients", len(recipients),
		"personalized", tmpl.PersonalizeNames,
		"templated", tmpl.UseTemplate)

	report := &models.SendReport{
		Total:   len(recipients),
		Results: []models.SendResult{},
		Errors:  []models.SendError{},
	}

	for _, recipient := range recipients {
		subject := tmpl.Subject
		body := tmpl.Body
		if tmpl.PersonalizeNames {
			subject = personalize.Apply(subject, recipient, fixed)
			body = personalize.Apply(body, recipient, fixed)
		}
		if tmpl.UseTemplate {
			body = personalize.WrapHTML(subject, body)
		}

		id, err := m.provider.Send(ctx, &delivery.Message{
			From:    from,
			To:      recipient.Email,
			Subject: subject,
			HTML:    body,
			Tags:    map[string]string{"type": "campaign"},
		})
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, models.SendError{
				Email:     recipient.Email,
				Name:      recipient.Name,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
			m.metrics.EmailsFailedTotal.Inc()
			m.logger.Warn("delivery failed", "to", recipient.Email, "error", err)
		} else {
			report.Sent++
			report.Results = append(report.Results, models.SendResult{
				Email:     recipient.Email,
				Name:      recipient.Name,
				ID:        id,
				Status:    "sent",
				Timestamp: time.Now(),
			})
			m.metrics.EmailsSentTotal.Inc()
		}

		// Pace every attempt, including failures, to stay under
		// provider rate limits.
		if m.cfg.SendDelay > 0 {
			select {
			case <-time.After(m.cfg.SendDelay):
			case <-ctx.Done():
				m.finish(ctx, ownerID, tmpl, report)
				return report, ctx.Err()
			}
		}
	}

	m.finish(ctx, ownerID, tmpl, report)
	return report, nil
}

// finish fills in the report summary and records the campaign. The
// campaign row is best effort: a storage failure must not turn a
// completed send into an error.
func (m *Mailer) finish(ctx context.Context, ownerID string, tmpl models.Template, report *models.SendReport) {
	rate := 0.0
	if report.Total > 0 {
		rate = float64(report.Sent) / float64(report.Total) * 100
	}
	report.Summary = models.SendSummary{
		SuccessRate:  fmt.Sprintf("%.1f", rate),
		Personalized: tmpl.PersonalizeNames,
		Templated:    tmpl.UseTemplate,
	}

	campaign := &models.Campaign{
		OwnerID:        ownerID,
		Subject:        tmpl.Subject,
		Body:           tmpl.Body,
		SentAt:         time.Now(),
		RecipientCount: report.Total,
		SentCount:      report.Sent,
		FailedCount:    report.Failed,
		Personalized:   tmpl.PersonalizeNames,
		Templated:      tmpl.UseTemplate,
	}
	if err := m.campaigns.Create(context.WithoutCancel(ctx), campaign); err != nil {
		// Continue anyway: the recipients already have their mail.
		m.logger.Warn("failed to record campaign", "owner_id", ownerID, "error", err)
	} else {
		m.metrics.CampaignsSentTotal.Inc()
	}

	m.logger.Info("campaign send finished",
		"owner_id", ownerID,
		"sent", report.Sent,
		"failed", report.Failed,
		"total", report.Total)
}
