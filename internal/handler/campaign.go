package handler

import (
	"net/http"

	"outreach-service/internal/auth"
	"outreach-service/internal/service"
	"outreach-service/internal/template"
)

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	Emails []string `json:"emails"`
	Count  int      `json:"count"`
}

// Scrape extracts addresses from a page. Each successful call uses one search.
//
// POST /api/scrape
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	emails, err := h.campaigns.ScrapeEmails(r.Context(), auth.SessionFromContext(r.Context()), req.URL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if emails == nil {
		emails = []string{}
	}
	writeJSON(w, http.StatusOK, scrapeResponse{Emails: emails, Count: len(emails)})
}

type sendEmailRequest struct {
	EmailAddresses []string `json:"emailAddresses"`
	Subject        string   `json:"subject"`
	EmailBody      string   `json:"emailBody"`
	SenderEmail    string   `json:"senderEmail"`
	SenderPassword string   `json:"senderPassword"`
}

// SendEmail dispatches one message per address. Individual delivery failures
// are reported in the results, not as an error status.
//
// POST /api/send-email
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	outcome, err := h.campaigns.SendCampaign(r.Context(), service.SendCampaignInput{
		Recipients:     req.EmailAddresses,
		Subject:        req.Subject,
		Body:           req.EmailBody,
		SenderEmail:    req.SenderEmail,
		SenderPassword: req.SenderPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

type generateEmailRequest struct {
	Category         string `json:"category"`
	RecipientName    string `json:"recipientName"`
	Purpose          string `json:"purpose"`
	Number           string `json:"number"`
	KeyMetrics       string `json:"keyMetrics"`
	ProductOrService string `json:"productOrService"`
	SenderName       string `json:"senderName"`
}

// POST /api/generate-email
func (h *Handler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req generateEmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rendered, err := h.campaigns.GenerateEmail(req.Category, template.Fields{
		RecipientName:    req.RecipientName,
		Purpose:          req.Purpose,
		Number:           req.Number,
		KeyMetrics:       req.KeyMetrics,
		ProductOrService: req.ProductOrService,
		SenderName:       req.SenderName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

// GET /api/templates
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": template.Categories()})
}
