package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/test/testutil"
)

func TestInventoryService(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	svc := services.NewInventoryService(store, testutil.Config(), logger.NewTestLogger(t))
	admin := services.Caller{UserID: uuid.New(), Email: testutil.AdminEmail}
	user := services.Caller{UserID: uuid.New(), Email: "user@example.com"}

	_, err := svc.Create(ctx, user, services.WoodInput{Slug: "slab", Name: "Slab", Species: "hinoki"})
	assert.ErrorIs(t, err, services.ErrForbidden)

	item, err := svc.Create(ctx, admin, services.WoodInput{
		Slug: "Hinoki-Slab", Name: "Hinoki slab", Species: "hinoki", Price: 12000, Stock: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "hinoki-slab", item.Slug)
	assert.Equal(t, models.WoodStatusAvailable, item.Status)

	_, err = svc.Create(ctx, admin, services.WoodInput{Slug: "hinoki-slab", Name: "Dup", Species: "hinoki"})
	assert.ErrorIs(t, err, models.ErrSlugTaken)

	_, err = svc.Create(ctx, admin, services.WoodInput{Slug: "neg", Name: "Neg", Species: "sugi", Price: -1})
	assert.True(t, services.IsValidationError(err))

	_, err = svc.Create(ctx, admin, services.WoodInput{Slug: "bad-status", Name: "X", Species: "sugi", Status: "lost"})
	assert.ErrorIs(t, err, services.ErrInvalidStatus)

	available, err := svc.ListAvailable(ctx, "HINOKI", 0, 0)
	require.NoError(t, err)
	assert.Len(t, available, 1)

	viewed, err := svc.GetPublic(ctx, "hinoki-slab")
	require.NoError(t, err)
	assert.Equal(t, int64(1), viewed.ViewCount)

	updated, err := svc.Update(ctx, admin, item.ID, services.WoodInput{
		Slug: "hinoki-slab", Name: "Hinoki slab", Species: "hinoki", Status: "archived",
	})
	require.NoError(t, err)
	assert.Equal(t, models.WoodStatusArchived, updated.Status)

	_, err = svc.GetPublic(ctx, "hinoki-slab")
	assert.ErrorIs(t, err, models.ErrNotFound)

	all, err := svc.List(ctx, admin, models.WoodFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, admin, item.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin, item.ID), models.ErrNotFound)
}
