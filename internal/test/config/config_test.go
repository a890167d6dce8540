package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://localhost/woodlinks")
	t.Setenv("ADMIN_EMAIL", "admin@woodlinks.jp")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("BASE_URL", "https://woodlinks.jp/")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "jpy", cfg.CheckoutCurrency)
	assert.Equal(t, "avatars", cfg.SupabaseStorageBucket)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "https://woodlinks.jp", cfg.BaseURL)
	assert.False(t, cfg.PaymentsEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"SUPABASE_URL", "SUPABASE_JWT_SECRET", "DATABASE_URL", "ADMIN_EMAIL"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestIsAdminEmail(t *testing.T) {
	cfg := &config.Config{AdminEmail: "Admin@WoodLinks.jp"}

	assert.True(t, cfg.IsAdminEmail("admin@woodlinks.jp"))
	assert.True(t, cfg.IsAdminEmail(" ADMIN@woodlinks.jp "))
	assert.False(t, cfg.IsAdminEmail("other@woodlinks.jp"))
	assert.False(t, cfg.IsAdminEmail(""))
	assert.False(t, (&config.Config{}).IsAdminEmail("admin@woodlinks.jp"))
}

func TestPaymentsEnabled(t *testing.T) {
	assert.True(t, (&config.Config{StripeSecretKey: "sk_test_1"}).PaymentsEnabled())
}
