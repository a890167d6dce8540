package services

import (
	"context"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
)

type WoodInput struct {
	Slug        string
	Name        string
	Species     string
	Dimensions  string
	Description string
	ImageURL    string
	Price       int64
	Stock       int
	Status      string
}

type InventoryService struct {
	items  InventoryStore
	config *config.Config
	logger logger.Logger
}

func NewInventoryService(items InventoryStore, cfg *config.Config, log logger.Logger) *InventoryService {
	return &InventoryService{items: items, config: cfg, logger: log}
}

// ListAvailable is the public storefront listing.
func (s *InventoryService) ListAvailable(ctx context.Context, search string, limit, offset uint64) ([]models.WoodItem, error) {
	status := models.WoodStatusAvailable
	if limit == 0 || limit > 100 {
		limit = 24
	}
	return s.items.ListWoodItems(ctx, models.WoodFilter{
		Status: &status,
		Search: strings.TrimSpace(search),
		Limit:  limit,
		Offset: offset,
	})
}

// GetPublic returns a storefront item and counts the view. Archived items
// are hidden.
func (s *InventoryService) GetPublic(ctx context.Context, slug string) (*models.WoodItem, error) {
	item, err := s.items.GetWoodItemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if item.Status == models.WoodStatusArchived {
		return nil, models.ErrNotFound
	}

	if err := s.items.IncrementWoodViews(ctx, item.ID); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"wood_id": item.ID.String(),
			"error":   err.Error(),
		}).Warn("Failed to count wood item view")
	} else {
		item.ViewCount++
	}
	return item, nil
}

func (s *InventoryService) List(ctx context.Context, caller Caller, filter models.WoodFilter) ([]models.WoodItem, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.items.ListWoodItems(ctx, filter)
}

func (s *InventoryService) Create(ctx context.Context, caller Caller, input WoodInput) (*models.WoodItem, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	item := &models.WoodItem{ID: uuid.New()}
	if err := applyWoodInput(item, input); err != nil {
		return nil, err
	}
	if err := s.items.CreateWoodItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) Update(ctx context.Context, caller Caller, id uuid.UUID, input WoodInput) (*models.WoodItem, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	item := &models.WoodItem{ID: id}
	if err := applyWoodInput(item, input); err != nil {
		return nil, err
	}
	if err := s.items.UpdateWoodItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *InventoryService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	if err := requireAdmin(s.config, caller); err != nil {
		return err
	}
	rows, err := s.items.DeleteWoodItem(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

func applyWoodInput(item *models.WoodItem, input WoodInput) error {
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if !govalidator.Matches(slug, slugPattern) {
		return invalid("slug", "must be 3-64 lowercase letters, digits or hyphens")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return invalid("name", "is required")
	}
	species := strings.TrimSpace(input.Species)
	if species == "" {
		return invalid("species", "is required")
	}
	if input.Price < 0 {
		return invalid("price", "cannot be negative")
	}
	if input.Stock < 0 {
		return invalid("stock", "cannot be negative")
	}
	if input.ImageURL != "" && !govalidator.IsRequestURL(input.ImageURL) {
		return invalid("image_url", "must be an absolute URL")
	}

	status := models.WoodStatus(input.Status)
	if input.Status == "" {
		status = models.WoodStatusAvailable
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	item.Slug = slug
	item.Name = name
	item.Species = species
	item.Dimensions = optional(input.Dimensions)
	item.Description = optional(input.Description)
	item.ImageURL = optional(input.ImageURL)
	item.Price = input.Price
	item.Stock = input.Stock
	item.Status = status
	return nil
}
