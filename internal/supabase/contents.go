package supabase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

func (d *DatabaseClient) ListContents(ctx context.Context, cardID uuid.UUID) ([]models.CardContent, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, card_id, type, label, value, sort_order, created_at
		FROM card_contents
		WHERE card_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card contents: %w", err)
	}
	defer rows.Close()

	contents := []models.CardContent{}
	for rows.Next() {
		var block models.CardContent
		if err := rows.Scan(&block.ID, &block.CardID, &block.Type, &block.Label, &block.Value, &block.SortOrder, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card content: %w", err)
		}
		contents = append(contents, block)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card content rows: %w", err)
	}
	return contents, nil
}

// ReplaceContents swaps the whole block list of a card in one transaction.
// Block order in the slice becomes sort_order.
func (d *DatabaseClient) ReplaceContents(ctx context.Context, cardID uuid.UUID, blocks []models.CardContent) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM card_contents WHERE card_id = $1`, cardID); err != nil {
		return fmt.Errorf("failed to clear card contents: %w", err)
	}

	for i := range blocks {
		blocks[i].CardID = cardID
		blocks[i].SortOrder = i
		if blocks[i].ID == uuid.Nil {
			blocks[i].ID = uuid.New()
		}
		err := tx.QueryRowContext(ctx, `
			INSERT INTO card_contents (id, card_id, type, label, value, sort_order)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING created_at
		`, blocks[i].ID, cardID, blocks[i].Type, blocks[i].Label, blocks[i].Value, i,
		).Scan(&blocks[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert card content: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit card contents: %w", err)
	}
	return nil
}
