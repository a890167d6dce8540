package testutil

import (
	"fmt"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/config"
)

const (
	JWTSecret     = "test-secret-key-for-jwt-signing-must-be-long-enough"
	AdminEmail    = "admin@woodlinks.jp"
	WebhookSecret = "whsec_test_secret"
)

// Config returns a configuration with payments enabled and no external
// services reachable.
func Config() *config.Config {
	return &config.Config{
		SupabaseURL:         "http://supabase.invalid",
		SupabaseJWTSecret:   JWTSecret,
		DatabaseURL:         "postgres://invalid",
		StripeSecretKey:     "sk_test_dummy",
		StripeWebhookSecret: WebhookSecret,
		CheckoutCurrency:    "JPY",
		AdminEmail:          AdminEmail,
		BaseURL:             "https://woodlinks.test",
		Environment:         "test",
	}
}

// Token signs an access token the way Supabase Auth does.
func Token(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	if email != "" {
		claims["email"] = email
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(JWTSecret))
	require.NoError(t, err)
	return signed
}

// MemoryAvatars records uploads instead of sending them to Storage.
type MemoryAvatars struct {
	mu      sync.Mutex
	Files   map[string][]byte
	Deleted []uuid.UUID
}

func NewMemoryAvatars() *MemoryAvatars {
	return &MemoryAvatars{Files: make(map[string][]byte)}
}

func (a *MemoryAvatars) UploadAvatar(userID, cardID uuid.UUID, filename, contentType string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := fmt.Sprintf("users/%s/cards/%s/avatar%s", userID, cardID, path.Ext(filename))
	a.Files[key] = data
	return "https://storage.test/" + key, nil
}

func (a *MemoryAvatars) DeleteCardFiles(userID, cardID uuid.UUID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Deleted = append(a.Deleted, cardID)
	return nil
}
