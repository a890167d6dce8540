package supabase

import (
	"errors"
	"fmt"

	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/models"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthClient proxies the email flows of Supabase Auth. It only calls the
// stateless gotrue endpoints so one client can serve every request.
type AuthClient struct {
	supabase *supabase.Client
}

func NewAuthClient(cfg *config.Config) (*AuthClient, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	return &AuthClient{supabase: client}, nil
}

func (a *AuthClient) SignUp(email, password string) (*models.AuthSession, error) {
	resp, err := a.supabase.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}

	// Without auto-confirm Supabase returns the user but no session.
	return &models.AuthSession{
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}, nil
}

func (a *AuthClient) SignIn(email, password string) (*models.AuthSession, error) {
	resp, err := a.supabase.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return sessionFromToken(resp), nil
}

func (a *AuthClient) Refresh(refreshToken string) (*models.AuthSession, error) {
	resp, err := a.supabase.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return sessionFromToken(resp), nil
}

func (a *AuthClient) SendMagicLink(email string) error {
	if err := a.supabase.Auth.Magiclink(types.MagiclinkRequest{Email: email}); err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

func sessionFromToken(resp *types.TokenResponse) *models.AuthSession {
	return &models.AuthSession{
		UserID:       resp.User.ID,
		Email:        resp.User.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}
}
