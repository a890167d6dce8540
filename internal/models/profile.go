package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID           uuid.UUID
	Email        sql.NullString
	DisplayName  sql.NullString
	Organization sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type AnalyticsEventType string

const (
	EventCardView      AnalyticsEventType = "view"
	EventVCardDownload AnalyticsEventType = "vcard_download"
	EventNFCTap        AnalyticsEventType = "nfc_tap"
)

type AnalyticsEvent struct {
	ID        uuid.UUID
	CardID    uuid.UUID
	EventType AnalyticsEventType
	Referrer  sql.NullString
	UserAgent sql.NullString
	CreatedAt time.Time
}

type DailyViews struct {
	Day   time.Time
	Views int64
}

type DashboardStats struct {
	OrdersByStatus map[OrderStatus]int64
	Cards          int64
	ClaimedCards   int64
	TotalViews     int64
	WoodItems      int64
}

// AuthSession is the token pair handed back by Supabase Auth.
type AuthSession struct {
	UserID       uuid.UUID
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}
