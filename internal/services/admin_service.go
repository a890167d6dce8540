package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/models"
)

type AdminService struct {
	orders OrderStore
	cards  CardStore
	items  InventoryStore
	config *config.Config
}

func NewAdminService(orders OrderStore, cards CardStore, items InventoryStore, cfg *config.Config) *AdminService {
	return &AdminService{orders: orders, cards: cards, items: items, config: cfg}
}

// Stats gathers the dashboard counters concurrently.
func (s *AdminService) Stats(ctx context.Context, caller Caller) (*models.DashboardStats, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}

	var stats models.DashboardStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.orders.CountOrdersByStatus(gctx)
		stats.OrdersByStatus = counts
		return err
	})
	g.Go(func() error {
		total, claimed, err := s.cards.CountCards(gctx)
		stats.Cards, stats.ClaimedCards = total, claimed
		return err
	})
	g.Go(func() error {
		views, err := s.cards.SumCardViews(gctx)
		stats.TotalViews = views
		return err
	})
	g.Go(func() error {
		items, err := s.items.CountWoodItems(gctx)
		stats.WoodItems = items
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
