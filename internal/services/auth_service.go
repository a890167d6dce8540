package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
)

//go:generate mockgen -destination=../mocks/mock_authenticator.go -package=mocks woodlinks-backend/internal/services Authenticator

// Authenticator is implemented by supabase.AuthClient.
type Authenticator interface {
	SignUp(email, password string) (*models.AuthSession, error)
	SignIn(email, password string) (*models.AuthSession, error)
	Refresh(refreshToken string) (*models.AuthSession, error)
	SendMagicLink(email string) error
}

type AuthService struct {
	auth     Authenticator
	profiles ProfileStore
	logger   logger.Logger
}

func NewAuthService(auth Authenticator, profiles ProfileStore, log logger.Logger) *AuthService {
	return &AuthService{auth: auth, profiles: profiles, logger: log}
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*models.AuthSession, error) {
	session, err := s.auth.SignUp(normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	s.ensureProfile(ctx, session)
	return session, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.AuthSession, error) {
	session, err := s.auth.SignIn(normalizeEmail(email), password)
	if err != nil {
		return nil, err
	}
	s.ensureProfile(ctx, session)
	return session, nil
}

func (s *AuthService) Refresh(refreshToken string) (*models.AuthSession, error) {
	return s.auth.Refresh(refreshToken)
}

func (s *AuthService) SendMagicLink(email string) error {
	return s.auth.SendMagicLink(normalizeEmail(email))
}

// GetProfile falls back to an empty profile for users who never saved one.
func (s *AuthService) GetProfile(ctx context.Context, caller Caller) (*models.Profile, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, caller.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.Profile{ID: caller.UserID, Email: optional(caller.Email)}, nil
	}
	return profile, err
}

func (s *AuthService) UpdateProfile(ctx context.Context, caller Caller, displayName, organization *string) (*models.Profile, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	profile := &models.Profile{
		ID:    caller.UserID,
		Email: optional(caller.Email),
	}
	if displayName != nil {
		profile.DisplayName = optional(*displayName)
	}
	if organization != nil {
		profile.Organization = optional(*organization)
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AuthService) ensureProfile(ctx context.Context, session *models.AuthSession) {
	if session == nil || session.UserID == uuid.Nil || s.profiles == nil {
		return
	}
	profile := &models.Profile{
		ID:    session.UserID,
		Email: sql.NullString{String: session.Email, Valid: session.Email != ""},
	}
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"user_id": session.UserID.String(),
			"error":   err.Error(),
		}).Warn("Failed to sync profile")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
