package validator

import (
	"fmt"
	"regexp"
	"strings"

	"outreach-service/internal/domain"
)

var (
	ErrEmptyEmail         = fmt.Errorf("%w: email is empty", domain.ErrValidation)
	ErrInvalidEmailFormat = fmt.Errorf("%w: invalid email format", domain.ErrValidation)
	ErrEmptyTransactionID = fmt.Errorf("%w: transaction ID is empty", domain.ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: name is empty", domain.ErrValidation)
	ErrInvalidPaymentID   = fmt.Errorf("%w: payment ID must be positive", domain.ErrValidation)
	ErrInvalidStatus      = fmt.Errorf("%w: payment status is not a decision", domain.ErrValidation)
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if !emailRegex.MatchString(email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

func ValidateTransactionID(transactionID string) error {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return ErrEmptyTransactionID
	}
	return nil
}

func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Required reports a validation error naming the first blank field.
// Fields are given as alternating name/value pairs.
func Required(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, pairs[i])
		}
	}
	return nil
}

func ValidatePaymentDecision(decision domain.PaymentDecision) error {
	if decision.PaymentID <= 0 {
		return ErrInvalidPaymentID
	}
	if err := ValidateEmail(decision.Email); err != nil {
		return err
	}
	if err := ValidateTransactionID(decision.TransactionID); err != nil {
		return err
	}
	if decision.Status != domain.PaymentApproved && decision.Status != domain.PaymentRejected {
		return ErrInvalidStatus
	}
	return nil
}
