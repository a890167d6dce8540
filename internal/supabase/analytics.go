package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

func (d *DatabaseClient) RecordEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO analytics_events (id, card_id, event_type, referrer, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, event.ID, event.CardID, event.EventType, event.Referrer, event.UserAgent,
	).Scan(&event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record analytics event: %w", err)
	}
	return nil
}

// DailyViews buckets view events per UTC day since the given instant. Days
// without views are omitted.
func (d *DatabaseClient) DailyViews(ctx context.Context, cardID uuid.UUID, since time.Time) ([]models.DailyViews, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*)
		FROM analytics_events
		WHERE card_id = $1 AND event_type = $2 AND created_at >= $3
		GROUP BY day
		ORDER BY day ASC
	`, cardID, models.EventCardView, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily views: %w", err)
	}
	defer rows.Close()

	days := []models.DailyViews{}
	for rows.Next() {
		var day models.DailyViews
		if err := rows.Scan(&day.Day, &day.Views); err != nil {
			return nil, fmt.Errorf("failed to scan daily views: %w", err)
		}
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily views: %w", err)
	}
	return days, nil
}
