package services

import (
	"errors"
	"fmt"

	"woodlinks-backend/internal/payments"
)

var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrOrderNotDeletable   = errors.New("only orders awaiting payment can be deleted")
	ErrOrderNotPending     = errors.New("order is no longer awaiting payment")
	ErrCardHasActiveOrders = errors.New("card has paid orders and cannot be deleted")
	ErrCardAlreadyClaimed  = errors.New("card has already been claimed")
	ErrUnknownMaterial     = payments.ErrUnknownMaterial
	ErrInvalidStatus       = errors.New("invalid status")
	ErrPaymentsDisabled    = errors.New("payments are not configured")
	ErrPaymentProvider     = errors.New("payment provider error")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
