//go:build integration
// +build integration

package integration_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"woodlinks-backend/internal/database"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/supabase"
)

// setupDatabase starts Postgres, applies the embedded migrations and returns
// a client over it.
func setupDatabase(t *testing.T) *supabase.DatabaseClient {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("woodlinks"),
		postgres.WithUsername("woodlinks"),
		postgres.WithPassword("woodlinks"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	client, err := supabase.NewDatabaseClient(connStr)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	migrator := database.NewMigratorWithDB(client.DB(), logger.NewTestLogger(t))
	require.NoError(t, migrator.Run(ctx))
	// Second run is a no-op.
	require.NoError(t, migrator.Run(ctx))

	return client
}

func TestPostgres(t *testing.T) {
	client := setupDatabase(t)
	ctx := context.Background()

	t.Run("only one concurrent claim wins", func(t *testing.T) {
		card := &models.Card{ID: uuid.New(), Slug: "race-card", Title: "Race", Status: models.CardStatusDraft}
		require.NoError(t, client.CreateCard(ctx, card))

		var mu sync.Mutex
		var wins int64
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rows, err := client.ClaimCard(ctx, card.ID, uuid.New())
				assert.NoError(t, err)
				mu.Lock()
				wins += rows
				mu.Unlock()
			}()
		}
		wg.Wait()
		assert.Equal(t, int64(1), wins)
	})

	t.Run("slug uniqueness", func(t *testing.T) {
		first := &models.Card{ID: uuid.New(), Slug: "dup-slug", Title: "A", Status: models.CardStatusDraft}
		require.NoError(t, client.CreateCard(ctx, first))
		second := &models.Card{ID: uuid.New(), Slug: "dup-slug", Title: "B", Status: models.CardStatusDraft}
		assert.ErrorIs(t, client.CreateCard(ctx, second), models.ErrSlugTaken)
	})

	t.Run("paid order blocks card delete", func(t *testing.T) {
		owner := uuid.New()
		card := &models.Card{
			ID: uuid.New(), Slug: "paid-card", Title: "Paid", Status: models.CardStatusDraft,
			OwnerID: uuid.NullUUID{UUID: owner, Valid: true},
		}
		require.NoError(t, client.CreateCard(ctx, card))

		order := &models.Order{
			ID: uuid.New(), UserID: owner, CardID: card.ID, Status: models.OrderStatusPendingPayment,
			Material: models.MaterialSugi, Quantity: 1, ShippingName: "A", ShippingPostalCode: "1",
			ShippingAddress1: "x", ShippingPhone: "0",
		}
		require.NoError(t, client.CreateOrder(ctx, order))

		_, err := client.MarkOrderPaid(ctx, order.ID, "pi_1", time.Now().UTC())
		require.NoError(t, err)
		// Redelivery is a no-op in effect.
		_, err = client.MarkOrderPaid(ctx, order.ID, "", time.Now().UTC())
		require.NoError(t, err)

		paid, err := client.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPaid, paid.Status)
		assert.Equal(t, "pi_1", paid.StripePaymentIntentID.String)

		rows, err := client.DeletePendingOrder(ctx, order.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)

		rows, err = client.DeleteCard(ctx, card.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("views and analytics", func(t *testing.T) {
		card := &models.Card{
			ID: uuid.New(), Slug: "viewed", Title: "Viewed", Status: models.CardStatusPublished,
			OwnerID: uuid.NullUUID{UUID: uuid.New(), Valid: true},
		}
		require.NoError(t, client.CreateCard(ctx, card))

		for i := 0; i < 3; i++ {
			require.NoError(t, client.IncrementCardViews(ctx, card.ID))
			require.NoError(t, client.RecordEvent(ctx, &models.AnalyticsEvent{CardID: card.ID, EventType: models.EventCardView}))
		}
		require.NoError(t, client.RecordEvent(ctx, &models.AnalyticsEvent{CardID: card.ID, EventType: models.EventVCardDownload}))

		stored, err := client.GetCard(ctx, card.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3), stored.ViewCount)

		daily, err := client.DailyViews(ctx, card.ID, time.Now().Add(-24*time.Hour))
		require.NoError(t, err)
		require.Len(t, daily, 1)
		assert.Equal(t, int64(3), daily[0].Views)
	})

	t.Run("contents replace", func(t *testing.T) {
		card := &models.Card{ID: uuid.New(), Slug: "contents", Title: "C", Status: models.CardStatusDraft}
		require.NoError(t, client.CreateCard(ctx, card))

		blocks := []models.CardContent{
			{Type: models.ContentTypeLink, Value: "https://a.example"},
			{Type: models.ContentTypeText, Label: "Bio", Value: "hello"},
		}
		require.NoError(t, client.ReplaceContents(ctx, card.ID, blocks))
		require.NoError(t, client.ReplaceContents(ctx, card.ID, blocks[1:]))

		stored, err := client.ListContents(ctx, card.ID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		assert.Equal(t, "hello", stored[0].Value)
	})

	t.Run("wood inventory search", func(t *testing.T) {
		item := &models.WoodItem{
			ID: uuid.New(), Slug: "keyaki-board", Name: "Keyaki board", Species: "keyaki",
			Price: 30000, Stock: 1, Status: models.WoodStatusAvailable,
		}
		require.NoError(t, client.CreateWoodItem(ctx, item))

		found, err := client.ListWoodItems(ctx, models.WoodFilter{Search: "KEYAKI"})
		require.NoError(t, err)
		assert.Len(t, found, 1)

		count, err := client.CountWoodItems(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}
