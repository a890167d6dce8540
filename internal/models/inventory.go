package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type WoodStatus string

const (
	WoodStatusAvailable WoodStatus = "available"
	WoodStatusReserved  WoodStatus = "reserved"
	WoodStatusSold      WoodStatus = "sold"
	WoodStatusArchived  WoodStatus = "archived"
)

func (s WoodStatus) Valid() bool {
	switch s {
	case WoodStatusAvailable, WoodStatusReserved, WoodStatusSold, WoodStatusArchived:
		return true
	}
	return false
}

// WoodItem is a piece of raw material sold on the storefront, unrelated to cards.
type WoodItem struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Species     string
	Dimensions  sql.NullString
	Description sql.NullString
	ImageURL    sql.NullString
	Price       int64
	Stock       int
	Status      WoodStatus
	ViewCount   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type WoodFilter struct {
	Status *WoodStatus
	Search string
	Limit  uint64
	Offset uint64
}
