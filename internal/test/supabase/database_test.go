package supabase_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/supabase"
)

func newMockClient(t *testing.T) (*supabase.DatabaseClient, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return supabase.NewDatabaseClientWithDB(db), mock
}

var cardRowColumns = []string{
	"id", "owner_id", "slug", "title", "description", "status", "material_type", "theme",
	"wood_origin", "wood_age", "wood_story", "avatar_url", "view_count", "created_at", "updated_at",
}

func TestClaimCard(t *testing.T) {
	client, mock := newMockClient(t)
	cardID, userID := uuid.New(), uuid.New()

	query := regexp.QuoteMeta("SET owner_id = $1") + `\s+` + regexp.QuoteMeta("WHERE id = $2 AND owner_id IS NULL")

	mock.ExpectExec(query).WithArgs(userID, cardID).WillReturnResult(sqlmock.NewResult(0, 1))
	rows, err := client.ClaimCard(context.Background(), cardID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	mock.ExpectExec(query).WithArgs(userID, cardID).WillReturnResult(sqlmock.NewResult(0, 0))
	rows, err = client.ClaimCard(context.Background(), cardID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestGetCard(t *testing.T) {
	client, mock := newMockClient(t)
	cardID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .+ FROM cards WHERE id = \$1`).WithArgs(cardID).
		WillReturnRows(sqlmock.NewRows(cardRowColumns).AddRow(
			cardID, nil, "fresh", "WoodLinks Card", nil, "draft", "sugi", nil,
			nil, nil, nil, nil, int64(0), now, now,
		))

	card, err := client.GetCard(context.Background(), cardID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", card.Slug)
	assert.False(t, card.Claimed())
	assert.Equal(t, "sugi", card.MaterialType.String)

	mock.ExpectQuery(`(?s)SELECT .+ FROM cards WHERE slug = \$1`).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(cardRowColumns))

	_, err = client.GetCardBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListCards_Paged(t *testing.T) {
	client, mock := newMockClient(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT .+ FROM cards ORDER BY created_at DESC LIMIT 2 OFFSET 4`).
		WillReturnRows(sqlmock.NewRows(cardRowColumns).AddRow(
			uuid.New(), uuid.New(), "claimed", "Owned", nil, "published", nil, nil,
			nil, nil, nil, nil, int64(7), now, now,
		))

	cards, err := client.ListCards(context.Background(), 2, 4)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.True(t, cards[0].Claimed())
	assert.Equal(t, int64(7), cards[0].ViewCount)
}

func TestCreateCard_SlugTaken(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`INSERT INTO cards`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := client.CreateCard(context.Background(), &models.Card{ID: uuid.New(), Slug: "taken", Title: "x", Status: models.CardStatusDraft})
	assert.ErrorIs(t, err, models.ErrSlugTaken)
}

func TestUpdateCard_ScopedToOwner(t *testing.T) {
	client, mock := newMockClient(t)
	cardID, ownerID := uuid.New(), uuid.New()
	title := "New title"
	status := models.CardStatusPublished

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cards SET status = $1, title = $2 WHERE id = $3 AND owner_id = $4")).
		WithArgs("published", title, cardID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := client.UpdateCard(context.Background(), cardID, ownerID, models.CardPatch{Title: &title, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// An empty patch never reaches the database.
	rows, err = client.UpdateCard(context.Background(), cardID, ownerID, models.CardPatch{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestDeleteCard_GuardsCommittedOrders(t *testing.T) {
	client, mock := newMockClient(t)
	cardID, ownerID := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM cards WHERE .+NOT EXISTS \(SELECT 1 FROM orders o WHERE o.card_id = cards.id AND o.status = ANY\(\$3\)\)`).
		WithArgs(cardID, ownerID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := client.DeleteCard(context.Background(), cardID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestDeletePendingOrder(t *testing.T) {
	client, mock := newMockClient(t)
	orderID, userID := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM orders\s+WHERE id = \$1 AND user_id = \$2 AND status = \$3`).
		WithArgs(orderID, userID, models.OrderStatusPendingPayment).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := client.DeletePendingOrder(context.Background(), orderID, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestMarkOrderPaid(t *testing.T) {
	client, mock := newMockClient(t)
	orderID := uuid.New()
	paidAt := time.Now().UTC()

	mock.ExpectExec(`UPDATE orders\s+SET status = \$1, paid_at = \$2`).
		WithArgs(models.OrderStatusPaid, paidAt, "pi_123", orderID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := client.MarkOrderPaid(context.Background(), orderID, "pi_123", paidAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
}

func TestListOrders_Filter(t *testing.T) {
	client, mock := newMockClient(t)
	status := models.OrderStatusShipped

	mock.ExpectQuery(`(?s)SELECT .+ FROM orders WHERE status = \$1 ORDER BY created_at DESC LIMIT 10`).
		WithArgs("shipped").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	orders, err := client.ListOrders(context.Background(), models.OrderFilter{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCountOrdersByStatus(t *testing.T) {
	client, mock := newMockClient(t)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM orders GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("paid", 3).
			AddRow("pending_payment", 1))

	counts, err := client.CountOrdersByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[models.OrderStatusPaid])
	assert.Equal(t, int64(1), counts[models.OrderStatusPendingPayment])
}

func TestReplaceContents(t *testing.T) {
	client, mock := newMockClient(t)
	cardID := uuid.New()
	blocks := []models.CardContent{
		{Type: models.ContentTypeLink, Value: "https://example.com"},
		{Type: models.ContentTypeText, Label: "Bio", Value: "Carpenter"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM card_contents WHERE card_id = \$1`).WithArgs(cardID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	for i := range blocks {
		mock.ExpectQuery(`INSERT INTO card_contents`).
			WithArgs(sqlmock.AnyArg(), cardID, blocks[i].Type, blocks[i].Label, blocks[i].Value, i).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	}
	mock.ExpectCommit()

	require.NoError(t, client.ReplaceContents(context.Background(), cardID, blocks))
	assert.Equal(t, 1, blocks[1].SortOrder)
	assert.Equal(t, cardID, blocks[0].CardID)
	assert.NotEqual(t, uuid.Nil, blocks[0].ID)
}

func TestReplaceContents_RollsBack(t *testing.T) {
	client, mock := newMockClient(t)
	cardID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM card_contents`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO card_contents`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := client.ReplaceContents(context.Background(), cardID, []models.CardContent{{Type: models.ContentTypeText, Value: "x"}})
	assert.Error(t, err)
}

func TestGetProfile_NotFound(t *testing.T) {
	client, mock := newMockClient(t)
	userID := uuid.New()

	mock.ExpectQuery(`FROM profiles`).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "display_name", "organization", "created_at", "updated_at"}))

	_, err := client.GetProfile(context.Background(), userID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
