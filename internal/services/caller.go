package services

import (
	"github.com/google/uuid"
	"woodlinks-backend/internal/config"
)

// Caller identifies the user behind a request, taken from a verified token.
type Caller struct {
	UserID uuid.UUID
	Email  string
}

func (c Caller) Authenticated() bool {
	return c.UserID != uuid.Nil
}

func requireUser(caller Caller) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(cfg *config.Config, caller Caller) error {
	if err := requireUser(caller); err != nil {
		return err
	}
	if !cfg.IsAdminEmail(caller.Email) {
		return ErrForbidden
	}
	return nil
}
