package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

func (d *DatabaseClient) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := d.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, organization, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`, userID).Scan(&p.ID, &p.Email, &p.DisplayName, &p.Organization, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile creates the profile on first write. Null fields keep the
// stored value.
func (d *DatabaseClient) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO profiles (id, email, display_name, organization)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(EXCLUDED.email, profiles.email),
			display_name = COALESCE(EXCLUDED.display_name, profiles.display_name),
			organization = COALESCE(EXCLUDED.organization, profiles.organization)
		RETURNING email, display_name, organization, created_at, updated_at
	`, profile.ID, profile.Email, profile.DisplayName, profile.Organization,
	).Scan(&profile.Email, &profile.DisplayName, &profile.Organization, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}
