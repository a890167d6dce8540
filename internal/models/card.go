package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type CardStatus string

const (
	CardStatusDraft        CardStatus = "draft"
	CardStatusPublished    CardStatus = "published"
	CardStatusLostReissued CardStatus = "lost_reissued"
	CardStatusDisabled     CardStatus = "disabled"
	CardStatusTransferred  CardStatus = "transferred"
)

var CardStatuses = []CardStatus{
	CardStatusDraft,
	CardStatusPublished,
	CardStatusLostReissued,
	CardStatusDisabled,
	CardStatusTransferred,
}

func (s CardStatus) Valid() bool {
	for _, known := range CardStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Card struct {
	ID           uuid.UUID
	OwnerID      uuid.NullUUID
	Slug         string
	Title        string
	Description  sql.NullString
	Status       CardStatus
	MaterialType sql.NullString
	Theme        sql.NullString
	WoodOrigin   sql.NullString
	WoodAge      sql.NullString
	WoodStory    sql.NullString
	AvatarURL    sql.NullString
	ViewCount    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claimed reports whether the card has been bound to an account.
func (c *Card) Claimed() bool {
	return c.OwnerID.Valid
}

func (c *Card) OwnedBy(userID uuid.UUID) bool {
	return c.OwnerID.Valid && c.OwnerID.UUID == userID
}

// CardPatch holds the editable subset of a card; nil fields are left untouched.
type CardPatch struct {
	Title        *string
	Description  *string
	Slug         *string
	Status       *CardStatus
	MaterialType *string
	Theme        *string
	WoodOrigin   *string
	WoodAge      *string
	WoodStory    *string
	AvatarURL    *string
}

func (p CardPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Slug == nil && p.Status == nil &&
		p.MaterialType == nil && p.Theme == nil && p.WoodOrigin == nil && p.WoodAge == nil &&
		p.WoodStory == nil && p.AvatarURL == nil
}

type ContentType string

const (
	ContentTypeLink  ContentType = "link"
	ContentTypeText  ContentType = "text"
	ContentTypePhone ContentType = "phone"
	ContentTypeEmail ContentType = "email"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeLink, ContentTypeText, ContentTypePhone, ContentTypeEmail:
		return true
	}
	return false
}

type CardContent struct {
	ID        uuid.UUID
	CardID    uuid.UUID
	Type      ContentType
	Label     string
	Value     string
	SortOrder int
	CreatedAt time.Time
}
