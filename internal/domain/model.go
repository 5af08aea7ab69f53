package domain

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// FreeSearchLimit is the number of extractions a non-premium user may run.
	FreeSearchLimit = 3
	// PremiumCurrency tags every payment amount.
	PremiumCurrency = "PKR"
)

// PremiumFee is the fixed price of the premium upgrade.
var PremiumFee = decimal.NewFromInt(499)

type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Premium      bool      `json:"premium"`
	SearchesUsed int       `json:"searchesUsed"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session binds a request to the signed-in user. A nil *Session means nobody is signed in.
type Session struct {
	Token string
	Email string
}

// Actor is the caller of a privileged operation. Approver is asserted by the
// transport layer, never derived here.
type Actor struct {
	Session  *Session
	Approver bool
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentApproved PaymentStatus = "approved"
	PaymentRejected PaymentStatus = "rejected"
)

type Payment struct {
	ID            int64           `json:"id"`
	Email         string          `json:"email"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	SubmittedAt   time.Time       `json:"submittedAt"`
	DecidedAt     *time.Time      `json:"decidedAt,omitempty"`
}

// PaymentDecision is published whenever a pending payment is approved or rejected.
type PaymentDecision struct {
	PaymentID     int64           `json:"payment_id"`
	Email         string          `json:"email"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	DecidedAt     time.Time       `json:"decided_at"`
}

type Draft struct {
	ID      string    `json:"id"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SavedAt time.Time `json:"savedAt"`
}

// Message is one prepared email for one recipient.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

type DispatchResult struct {
	Recipient string         `json:"recipient"`
	Status    DispatchStatus `json:"status"`
	Detail    string         `json:"detail"`
}

type CampaignOutcome struct {
	Results     []DispatchResult `json:"results"`
	TotalSent   int              `json:"totalSent"`
	TotalFailed int              `json:"totalFailed"`
}

type EmailStatus string

const (
	StatusSent   EmailStatus = "sent"
	StatusFailed EmailStatus = "failed"
)

type EmailLog struct {
	CampaignID     string
	RecipientEmail string
	Subject        string
	Status         EmailStatus
	MessageID      sql.NullString
	ErrorMessage   sql.NullString
}
