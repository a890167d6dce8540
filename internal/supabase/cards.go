package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"woodlinks-backend/internal/models"
)

const cardColumns = `id, owner_id, slug, title, description, status, material_type, theme,
	wood_origin, wood_age, wood_story, avatar_url, view_count, created_at, updated_at`

func scanCard(row rowScanner) (*models.Card, error) {
	var c models.Card
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Slug, &c.Title, &c.Description, &c.Status, &c.MaterialType, &c.Theme,
		&c.WoodOrigin, &c.WoodAge, &c.WoodStory, &c.AvatarURL, &c.ViewCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (d *DatabaseClient) CreateCard(ctx context.Context, card *models.Card) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO cards (id, owner_id, slug, title, description, status, material_type, theme)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING view_count, created_at, updated_at
	`, card.ID, card.OwnerID, card.Slug, card.Title, card.Description, card.Status, card.MaterialType, card.Theme,
	).Scan(&card.ViewCount, &card.CreatedAt, &card.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetCard(ctx context.Context, cardID uuid.UUID) (*models.Card, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, cardID)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (d *DatabaseClient) GetCardBySlug(ctx context.Context, slug string) (*models.Card, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM cards WHERE slug = $1`, slug)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

func (d *DatabaseClient) ListCardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Card, error) {
	return d.queryCards(ctx, d.psql.Select(cardColumns).From("cards").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC"))
}

func (d *DatabaseClient) ListCards(ctx context.Context, limit, offset uint64) ([]models.Card, error) {
	query := d.psql.Select(cardColumns).From("cards").OrderBy("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return d.queryCards(ctx, query)
}

func (d *DatabaseClient) queryCards(ctx context.Context, query sq.SelectBuilder) ([]models.Card, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build card query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []models.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card rows: %w", err)
	}
	return cards, nil
}

// UpdateCard applies the patch only when ownerID still owns the card.
func (d *DatabaseClient) UpdateCard(ctx context.Context, cardID, ownerID uuid.UUID, patch models.CardPatch) (int64, error) {
	values := map[string]interface{}{}
	if patch.Title != nil {
		values["title"] = *patch.Title
	}
	if patch.Description != nil {
		values["description"] = nullString(patch.Description)
	}
	if patch.Slug != nil {
		values["slug"] = *patch.Slug
	}
	if patch.Status != nil {
		values["status"] = string(*patch.Status)
	}
	if patch.MaterialType != nil {
		values["material_type"] = nullString(patch.MaterialType)
	}
	if patch.Theme != nil {
		values["theme"] = nullString(patch.Theme)
	}
	if patch.WoodOrigin != nil {
		values["wood_origin"] = nullString(patch.WoodOrigin)
	}
	if patch.WoodAge != nil {
		values["wood_age"] = nullString(patch.WoodAge)
	}
	if patch.WoodStory != nil {
		values["wood_story"] = nullString(patch.WoodStory)
	}
	if patch.AvatarURL != nil {
		values["avatar_url"] = nullString(patch.AvatarURL)
	}
	if len(values) == 0 {
		return 0, nil
	}

	sqlStr, args, err := d.psql.Update("cards").
		SetMap(values).
		Where(sq.Eq{"id": cardID, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build card update: %w", err)
	}

	res, err := d.db.ExecContext(ctx, sqlStr, args...)
	if isUniqueViolation(err) {
		return 0, models.ErrSlugTaken
	}
	if err != nil {
		return 0, fmt.Errorf("failed to update card: %w", err)
	}
	return res.RowsAffected()
}

func (d *DatabaseClient) UpdateCardStatus(ctx context.Context, cardID uuid.UUID, status models.CardStatus) (int64, error) {
	res, err := d.db.ExecContext(ctx, `UPDATE cards SET status = $1 WHERE id = $2`, status, cardID)
	if err != nil {
		return 0, fmt.Errorf("failed to update card status: %w", err)
	}
	return res.RowsAffected()
}

// ClaimCard binds an unowned card to userID. The owner_id IS NULL predicate
// makes the first writer win; a losing claimant sees zero rows affected.
func (d *DatabaseClient) ClaimCard(ctx context.Context, cardID, userID uuid.UUID) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE cards
		SET owner_id = $1
		WHERE id = $2 AND owner_id IS NULL
	`, userID, cardID)
	if err != nil {
		return 0, fmt.Errorf("failed to claim card: %w", err)
	}
	return res.RowsAffected()
}

// DeleteCard removes an owned card unless one of its orders has been paid for.
func (d *DatabaseClient) DeleteCard(ctx context.Context, cardID, ownerID uuid.UUID) (int64, error) {
	committed := make([]string, len(models.CommittedStatuses))
	for i, status := range models.CommittedStatuses {
		committed[i] = string(status)
	}

	sqlStr, args, err := d.psql.Delete("cards").
		Where(sq.Eq{"id": cardID, "owner_id": ownerID}).
		Where(sq.Expr("NOT EXISTS (SELECT 1 FROM orders o WHERE o.card_id = cards.id AND o.status = ANY(?))", pq.Array(committed))).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build card delete: %w", err)
	}

	res, err := d.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete card: %w", err)
	}
	return res.RowsAffected()
}

func (d *DatabaseClient) IncrementCardViews(ctx context.Context, cardID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `UPDATE cards SET view_count = view_count + 1 WHERE id = $1`, cardID)
	if err != nil {
		return fmt.Errorf("failed to increment card views: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CountCards(ctx context.Context) (total int64, claimed int64, err error) {
	err = d.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(owner_id) FROM cards`,
	).Scan(&total, &claimed)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return total, claimed, nil
}

func (d *DatabaseClient) SumCardViews(ctx context.Context) (int64, error) {
	var views int64
	err := d.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(view_count), 0) FROM cards`).Scan(&views)
	if err != nil {
		return 0, fmt.Errorf("failed to sum card views: %w", err)
	}
	return views, nil
}
