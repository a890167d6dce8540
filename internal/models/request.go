package models

type CreateOrderRequest struct {
	CardID             string `json:"card_id" binding:"required" example:"5d0c8b8e-7f0e-4a43-9a4d-3f1f0b0e6a11"`
	Material           string `json:"material" binding:"required" example:"sugi"`
	Quantity           int    `json:"quantity" binding:"required,min=1" example:"1"`
	ShippingName       string `json:"shipping_name" binding:"required"`
	ShippingPostalCode string `json:"shipping_postal_code" binding:"required"`
	ShippingAddress1   string `json:"shipping_address1" binding:"required"`
	ShippingAddress2   string `json:"shipping_address2,omitempty"`
	ShippingPhone      string `json:"shipping_phone" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" binding:"required" example:"shipped"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	Carrier        *string `json:"carrier,omitempty"`
}

type CreateCardRequest struct {
	Title        string `json:"title" binding:"required"`
	Slug         string `json:"slug,omitempty"`
	Description  string `json:"description,omitempty"`
	MaterialType string `json:"material_type,omitempty"`
	Theme        string `json:"theme,omitempty"`
}

// UpdateCardRequest is a partial update; omitted fields keep their value.
type UpdateCardRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Slug         *string `json:"slug,omitempty"`
	Status       *string `json:"status,omitempty"`
	MaterialType *string `json:"material_type,omitempty"`
	Theme        *string `json:"theme,omitempty"`
	WoodOrigin   *string `json:"wood_origin,omitempty"`
	WoodAge      *string `json:"wood_age,omitempty"`
	WoodStory    *string `json:"wood_story,omitempty"`
}

type ContentBlockRequest struct {
	Type  string `json:"type" binding:"required" example:"link"`
	Label string `json:"label"`
	Value string `json:"value" binding:"required"`
}

type ReplaceContentsRequest struct {
	Blocks []ContentBlockRequest `json:"blocks" binding:"dive"`
}

type IssueCardsRequest struct {
	Count    int    `json:"count" binding:"required,min=1,max=500"`
	Material string `json:"material,omitempty"`
	Title    string `json:"title,omitempty"`
}

type UpdateCardStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type WoodItemRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Species     string `json:"species" binding:"required"`
	Dimensions  string `json:"dimensions,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Price       int64  `json:"price" binding:"min=0"`
	Stock       int    `json:"stock" binding:"min=0"`
	Status      string `json:"status,omitempty"`
}

type UpdateProfileRequest struct {
	DisplayName  *string `json:"display_name,omitempty"`
	Organization *string `json:"organization,omitempty"`
}

type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type MagicLinkRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
