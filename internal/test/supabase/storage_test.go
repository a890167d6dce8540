package supabase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"woodlinks-backend/internal/supabase"
)

func TestStorageClient_PublicURL(t *testing.T) {
	client := supabase.NewStorageClient("https://project.supabase.co/", "service-key", "avatars")

	url := client.PublicURL("users/u1/cards/c1/avatar.png")

	assert.Equal(t, "https://project.supabase.co/storage/v1/object/public/avatars/users/u1/cards/c1/avatar.png", url)
}
