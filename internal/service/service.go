package service

import (
	"context"
	"fmt"
	"strings"

	"outreach-service/internal/dispatch"
	"outreach-service/internal/domain"
	"outreach-service/internal/extractor"
	"outreach-service/internal/scraper"
	"outreach-service/internal/template"
	"outreach-service/internal/validator"

	log "github.com/sirupsen/logrus"
)

// PageFetcher retrieves the text of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// QuotaGate runs an action under the session user's quota.
type QuotaGate interface {
	Guard(ctx context.Context, session *domain.Session, action func(ctx context.Context) error) error
}

type Dispatcher interface {
	Send(ctx context.Context, from string, messages []domain.Message, transport dispatch.Transport) (*domain.CampaignOutcome, error)
}

// TransportFactory builds a delivery capability from the caller's sender credentials.
type TransportFactory func(senderEmail, senderPassword string) dispatch.Transport

type campaignService struct {
	fetcher    PageFetcher
	gate       QuotaGate
	dispatcher Dispatcher
	transports TransportFactory
}

func NewCampaignService(fetcher PageFetcher, gate QuotaGate, dispatcher Dispatcher, transports TransportFactory) *campaignService {
	return &campaignService{fetcher: fetcher, gate: gate, dispatcher: dispatcher, transports: transports}
}

// ScrapeEmails fetches url and extracts its addresses as one quota-counted search.
func (s *campaignService) ScrapeEmails(ctx context.Context, session *domain.Session, url string) ([]string, error) {
	if _, err := scraper.ValidateURL(url); err != nil {
		return nil, err
	}

	var emails []string
	err := s.gate.Guard(ctx, session, func(ctx context.Context) error {
		text, err := s.fetcher.Fetch(ctx, strings.TrimSpace(url))
		if err != nil {
			return err
		}
		emails = extractor.Extract(text)
		return nil
	})
	if err != nil {
		log.WithError(err).WithField("url", url).Warn("Scrape failed")
		return nil, err
	}

	log.WithFields(log.Fields{"url": url, "count": len(emails)}).Info("Scrape completed")
	return emails, nil
}

type SendCampaignInput struct {
	Recipients     []string
	Subject        string
	Body           string
	SenderEmail    string
	SenderPassword string
}

// SendCampaign sends the same subject and body to every recipient.
func (s *campaignService) SendCampaign(ctx context.Context, in SendCampaignInput) (*domain.CampaignOutcome, error) {
	if err := validator.Required(
		"subject", in.Subject,
		"emailBody", in.Body,
		"senderEmail", in.SenderEmail,
		"senderPassword", in.SenderPassword,
	); err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(in.Recipients))
	for _, r := range in.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			messages = append(messages, domain.Message{Recipient: r, Subject: in.Subject, Body: in.Body})
		}
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: emailAddresses is required", domain.ErrValidation)
	}

	from := strings.TrimSpace(in.SenderEmail)
	return s.dispatcher.Send(ctx, from, messages, s.transports(from, in.SenderPassword))
}

func (s *campaignService) GenerateEmail(category string, fields template.Fields) (template.Rendered, error) {
	return template.Render(strings.TrimSpace(category), fields)
}
