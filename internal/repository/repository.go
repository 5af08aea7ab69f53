package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outreach-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

const queryTimeout = 5 * time.Second

type PostgresEmailRepository struct {
	db *sql.DB
}

func NewPostgresEmailRepository(db *sql.DB) *PostgresEmailRepository {
	return &PostgresEmailRepository{db: db}
}

func (r *PostgresEmailRepository) SaveLog(ctx context.Context, l domain.EmailLog) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"campaign_id":     l.CampaignID,
		"recipient_email": l.RecipientEmail,
		"subject":         l.Subject,
		"status":          l.Status,
	}).Debug("Saving email log to database")

	const query = `
        INSERT INTO email_logs (campaign_id, recipient_email, subject, status, message_id, error_message)
        VALUES ($1, $2, $3, $4, $5, $6);
    `

	if _, err := conn(ctx, r.db).ExecContext(ctx, query,
		l.CampaignID, l.RecipientEmail, l.Subject, string(l.Status),
		nullStringOrNil(l.MessageID), nullStringOrNil(l.ErrorMessage),
	); err != nil {
		return fmt.Errorf("failed to insert email log: %w", err)
	}
	return nil
}

func nullStringOrNil(ns sql.NullString) interface{} {
	if ns.Valid {
		return ns.String
	}
	return nil
}
