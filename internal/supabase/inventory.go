package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

const woodColumns = `id, slug, name, species, dimensions, description, image_url,
	price, stock, status, view_count, created_at, updated_at`

func scanWoodItem(row rowScanner) (*models.WoodItem, error) {
	var w models.WoodItem
	err := row.Scan(
		&w.ID, &w.Slug, &w.Name, &w.Species, &w.Dimensions, &w.Description, &w.ImageURL,
		&w.Price, &w.Stock, &w.Status, &w.ViewCount, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (d *DatabaseClient) CreateWoodItem(ctx context.Context, item *models.WoodItem) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO wood_inventory (id, slug, name, species, dimensions, description, image_url, price, stock, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING view_count, created_at, updated_at
	`, item.ID, item.Slug, item.Name, item.Species, item.Dimensions, item.Description, item.ImageURL,
		item.Price, item.Stock, item.Status,
	).Scan(&item.ViewCount, &item.CreatedAt, &item.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create wood item: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetWoodItem(ctx context.Context, id uuid.UUID) (*models.WoodItem, error) {
	return d.getWoodItem(ctx, `SELECT `+woodColumns+` FROM wood_inventory WHERE id = $1`, id)
}

func (d *DatabaseClient) GetWoodItemBySlug(ctx context.Context, slug string) (*models.WoodItem, error) {
	return d.getWoodItem(ctx, `SELECT `+woodColumns+` FROM wood_inventory WHERE slug = $1`, slug)
}

func (d *DatabaseClient) getWoodItem(ctx context.Context, query string, arg interface{}) (*models.WoodItem, error) {
	item, err := scanWoodItem(d.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wood item: %w", err)
	}
	return item, nil
}

func (d *DatabaseClient) ListWoodItems(ctx context.Context, filter models.WoodFilter) ([]models.WoodItem, error) {
	query := d.psql.Select(woodColumns).From("wood_inventory").OrderBy("created_at DESC")

	if filter.Status != nil {
		query = query.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(sq.Or{
			sq.ILike{"name": pattern},
			sq.ILike{"species": pattern},
		})
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build wood query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list wood items: %w", err)
	}
	defer rows.Close()

	items := []models.WoodItem{}
	for rows.Next() {
		item, err := scanWoodItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wood item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wood rows: %w", err)
	}
	return items, nil
}

func (d *DatabaseClient) UpdateWoodItem(ctx context.Context, item *models.WoodItem) error {
	err := d.db.QueryRowContext(ctx, `
		UPDATE wood_inventory
		SET slug = $1, name = $2, species = $3, dimensions = $4, description = $5,
			image_url = $6, price = $7, stock = $8, status = $9
		WHERE id = $10
		RETURNING view_count, created_at, updated_at
	`, item.Slug, item.Name, item.Species, item.Dimensions, item.Description,
		item.ImageURL, item.Price, item.Stock, item.Status, item.ID,
	).Scan(&item.ViewCount, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	if isUniqueViolation(err) {
		return models.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update wood item: %w", err)
	}
	return nil
}

func (d *DatabaseClient) DeleteWoodItem(ctx context.Context, id uuid.UUID) (int64, error) {
	res, err := d.db.ExecContext(ctx, `DELETE FROM wood_inventory WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to delete wood item: %w", err)
	}
	return res.RowsAffected()
}

func (d *DatabaseClient) IncrementWoodViews(ctx context.Context, id uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `UPDATE wood_inventory SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment wood views: %w", err)
	}
	return nil
}

func (d *DatabaseClient) CountWoodItems(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wood_inventory`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count wood items: %w", err)
	}
	return count, nil
}
