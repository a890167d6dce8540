package models

import (
	"database/sql"
	"time"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID                 string     `json:"order_id"`
	CardID             string     `json:"card_id"`
	UserID             string     `json:"user_id"`
	Status             string     `json:"status"`
	Material           string     `json:"material"`
	Quantity           int        `json:"quantity"`
	ShippingName       string     `json:"shipping_name"`
	ShippingPostalCode string     `json:"shipping_postal_code"`
	ShippingAddress1   string     `json:"shipping_address1"`
	ShippingAddress2   string     `json:"shipping_address2,omitempty"`
	ShippingPhone      string     `json:"shipping_phone"`
	Currency           string     `json:"currency,omitempty"`
	Total              *int64     `json:"total,omitempty"`
	Carrier            string     `json:"carrier,omitempty"`
	TrackingNumber     string     `json:"tracking_number,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	ShippedAt          *time.Time `json:"shipped_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type CheckoutResponse struct {
	OrderID   string `json:"order_id"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type CardResponse struct {
	ID           string            `json:"id"`
	OwnerID      *string           `json:"owner_id"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Description  string            `json:"description,omitempty"`
	Status       string            `json:"status"`
	MaterialType string            `json:"material_type,omitempty"`
	Theme        string            `json:"theme,omitempty"`
	WoodOrigin   string            `json:"wood_origin,omitempty"`
	WoodAge      string            `json:"wood_age,omitempty"`
	WoodStory    string            `json:"wood_story,omitempty"`
	AvatarURL    string            `json:"avatar_url,omitempty"`
	ViewCount    int64             `json:"view_count"`
	Contents     []ContentResponse `json:"contents,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type ContentResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Label     string `json:"label,omitempty"`
	Value     string `json:"value"`
	SortOrder int    `json:"sort_order"`
}

type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
}

type ActivationPrompt struct {
	Message  string `json:"message"`
	ClaimURL string `json:"claim_url"`
	LoginURL string `json:"login_url"`
}

type PublicCardResponse struct {
	Card               *CardResponse     `json:"card,omitempty"`
	ActivationRequired bool              `json:"activation_required"`
	Activation         *ActivationPrompt `json:"activation,omitempty"`
	Preview            bool              `json:"preview,omitempty"`
}

type ClaimResponse struct {
	Card     CardResponse `json:"card"`
	Redirect string       `json:"redirect"`
}

type CardStatusMessage struct {
	CardID  string `json:"card_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type IssuedCard struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	NFCURL string `json:"nfc_url"`
}

type IssuedCardsResponse struct {
	Cards []IssuedCard `json:"cards"`
}

type AnalyticsResponse struct {
	CardID    string           `json:"card_id"`
	ViewCount int64            `json:"view_count"`
	Daily     []DailyViewsItem `json:"daily"`
}

type DailyViewsItem struct {
	Day   string `json:"day"`
	Views int64  `json:"views"`
}

type StatsResponse struct {
	OrdersByStatus map[string]int64 `json:"orders_by_status"`
	Cards          int64            `json:"cards"`
	ClaimedCards   int64            `json:"claimed_cards"`
	TotalViews     int64            `json:"total_views"`
	WoodItems      int64            `json:"wood_items"`
}

type WoodItemResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Dimensions  string    `json:"dimensions,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Price       int64     `json:"price"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	ViewCount   int64     `json:"view_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type WoodListResponse struct {
	Items []WoodItemResponse `json:"items"`
}

type ProfileResponse struct {
	ID           string `json:"id"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"display_name,omitempty"`
	Organization string `json:"organization,omitempty"`
}

type SessionResponse struct {
	UserID       string `json:"user_id,omitempty"`
	Email        string `json:"email,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

func NewOrderResponse(o *Order) OrderResponse {
	resp := OrderResponse{
		ID:                 o.ID.String(),
		CardID:             o.CardID.String(),
		UserID:             o.UserID.String(),
		Status:             string(o.Status),
		Material:           string(o.Material),
		Quantity:           o.Quantity,
		ShippingName:       o.ShippingName,
		ShippingPostalCode: o.ShippingPostalCode,
		ShippingAddress1:   o.ShippingAddress1,
		ShippingAddress2:   o.ShippingAddress2.String,
		ShippingPhone:      o.ShippingPhone,
		Currency:           o.Currency.String,
		Carrier:            o.Carrier.String,
		TrackingNumber:     o.TrackingNumber.String,
		PaidAt:             timePtr(o.PaidAt),
		ShippedAt:          timePtr(o.ShippedAt),
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
	if o.Total.Valid {
		total := o.Total.Int64
		resp.Total = &total
	}
	return resp
}

func NewOrderListResponse(orders []Order) OrderListResponse {
	list := make([]OrderResponse, len(orders))
	for i := range orders {
		list[i] = NewOrderResponse(&orders[i])
	}
	return OrderListResponse{Orders: list}
}

func NewCardResponse(c *Card, contents []CardContent) CardResponse {
	resp := CardResponse{
		ID:           c.ID.String(),
		Slug:         c.Slug,
		Title:        c.Title,
		Description:  c.Description.String,
		Status:       string(c.Status),
		MaterialType: c.MaterialType.String,
		Theme:        c.Theme.String,
		WoodOrigin:   c.WoodOrigin.String,
		WoodAge:      c.WoodAge.String,
		WoodStory:    c.WoodStory.String,
		AvatarURL:    c.AvatarURL.String,
		ViewCount:    c.ViewCount,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.OwnerID.Valid {
		owner := c.OwnerID.UUID.String()
		resp.OwnerID = &owner
	}
	for _, block := range contents {
		resp.Contents = append(resp.Contents, ContentResponse{
			ID:        block.ID.String(),
			Type:      string(block.Type),
			Label:     block.Label,
			Value:     block.Value,
			SortOrder: block.SortOrder,
		})
	}
	return resp
}

func NewWoodItemResponse(w *WoodItem) WoodItemResponse {
	return WoodItemResponse{
		ID:          w.ID.String(),
		Slug:        w.Slug,
		Name:        w.Name,
		Species:     w.Species,
		Dimensions:  w.Dimensions.String,
		Description: w.Description.String,
		ImageURL:    w.ImageURL.String,
		Price:       w.Price,
		Stock:       w.Stock,
		Status:      string(w.Status),
		ViewCount:   w.ViewCount,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func NewProfileResponse(p *Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID.String(),
		Email:        p.Email.String,
		DisplayName:  p.DisplayName.String,
		Organization: p.Organization.String,
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
