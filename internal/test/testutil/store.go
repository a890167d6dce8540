package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
)

// MemoryStore is an in-memory stand-in for supabase.DatabaseClient. Every
// method takes the lock, so conditional writes behave atomically.
type MemoryStore struct {
	mu       sync.Mutex
	Cards    map[uuid.UUID]*models.Card
	Contents map[uuid.UUID][]models.CardContent
	Orders   map[uuid.UUID]*models.Order
	Items    map[uuid.UUID]*models.WoodItem
	Profiles map[uuid.UUID]*models.Profile
	Events   []models.AnalyticsEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Cards:    make(map[uuid.UUID]*models.Card),
		Contents: make(map[uuid.UUID][]models.CardContent),
		Orders:   make(map[uuid.UUID]*models.Order),
		Items:    make(map[uuid.UUID]*models.WoodItem),
		Profiles: make(map[uuid.UUID]*models.Profile),
	}
}

// AddCard seeds a card directly, filling in timestamps.
func (s *MemoryStore) AddCard(card models.Card) *models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card.ID == uuid.Nil {
		card.ID = uuid.New()
	}
	if card.Status == "" {
		card.Status = models.CardStatusDraft
	}
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	s.Cards[card.ID] = &card
	c := card
	return &c
}

// AddOrder seeds an order directly.
func (s *MemoryStore) AddOrder(order models.Order) *models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	s.Orders[order.ID] = &order
	o := order
	return &o
}

func (s *MemoryStore) EventCount(eventType models.AnalyticsEventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.Events {
		if e.EventType == eventType {
			n++
		}
	}
	return n
}

// Cards

func (s *MemoryStore) CreateCard(ctx context.Context, card *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Cards {
		if existing.Slug == card.Slug {
			return models.ErrSlugTaken
		}
	}
	card.CreatedAt = time.Now()
	card.UpdatedAt = card.CreatedAt
	c := *card
	s.Cards[card.ID] = &c
	return nil
}

func (s *MemoryStore) GetCard(ctx context.Context, cardID uuid.UUID) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.Cards[cardID]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := *card
	return &c, nil
}

func (s *MemoryStore) GetCardBySlug(ctx context.Context, slug string) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range s.Cards {
		if card.Slug == slug {
			c := *card
			return &c, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *MemoryStore) ListCardsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards := []models.Card{}
	for _, card := range s.Cards {
		if card.OwnedBy(ownerID) {
			cards = append(cards, *card)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return cards, nil
}

func (s *MemoryStore) ListCards(ctx context.Context, limit, offset uint64) ([]models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards := []models.Card{}
	for _, card := range s.Cards {
		cards = append(cards, *card)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].CreatedAt.After(cards[j].CreatedAt) })
	return page(cards, limit, offset), nil
}

func (s *MemoryStore) UpdateCard(ctx context.Context, cardID, ownerID uuid.UUID, patch models.CardPatch) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.Cards[cardID]
	if !ok || !card.OwnedBy(ownerID) {
		return 0, nil
	}
	if patch.Slug != nil {
		for id, other := range s.Cards {
			if id != cardID && other.Slug == *patch.Slug {
				return 0, models.ErrSlugTaken
			}
		}
		card.Slug = *patch.Slug
	}
	if patch.Title != nil {
		card.Title = *patch.Title
	}
	if patch.Status != nil {
		card.Status = *patch.Status
	}
	setNull(&card.Description.String, &card.Description.Valid, patch.Description)
	setNull(&card.MaterialType.String, &card.MaterialType.Valid, patch.MaterialType)
	setNull(&card.Theme.String, &card.Theme.Valid, patch.Theme)
	setNull(&card.WoodOrigin.String, &card.WoodOrigin.Valid, patch.WoodOrigin)
	setNull(&card.WoodAge.String, &card.WoodAge.Valid, patch.WoodAge)
	setNull(&card.WoodStory.String, &card.WoodStory.Valid, patch.WoodStory)
	setNull(&card.AvatarURL.String, &card.AvatarURL.Valid, patch.AvatarURL)
	card.UpdatedAt = time.Now()
	return 1, nil
}

func (s *MemoryStore) UpdateCardStatus(ctx context.Context, cardID uuid.UUID, status models.CardStatus) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.Cards[cardID]
	if !ok {
		return 0, nil
	}
	card.Status = status
	return 1, nil
}

func (s *MemoryStore) ClaimCard(ctx context.Context, cardID, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.Cards[cardID]
	if !ok || card.OwnerID.Valid {
		return 0, nil
	}
	card.OwnerID = uuid.NullUUID{UUID: userID, Valid: true}
	return 1, nil
}

func (s *MemoryStore) DeleteCard(ctx context.Context, cardID, ownerID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.Cards[cardID]
	if !ok || !card.OwnedBy(ownerID) {
		return 0, nil
	}
	for _, order := range s.Orders {
		if order.CardID == cardID && committed(order.Status) {
			return 0, nil
		}
	}
	delete(s.Cards, cardID)
	delete(s.Contents, cardID)
	return 1, nil
}

func (s *MemoryStore) IncrementCardViews(ctx context.Context, cardID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card, ok := s.Cards[cardID]; ok {
		card.ViewCount++
	}
	return nil
}

func (s *MemoryStore) CountCards(ctx context.Context) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var claimed int64
	for _, card := range s.Cards {
		if card.OwnerID.Valid {
			claimed++
		}
	}
	return int64(len(s.Cards)), claimed, nil
}

func (s *MemoryStore) SumCardViews(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var views int64
	for _, card := range s.Cards {
		views += card.ViewCount
	}
	return views, nil
}

func (s *MemoryStore) ListContents(ctx context.Context, cardID uuid.UUID) ([]models.CardContent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.CardContent{}, s.Contents[cardID]...), nil
}

func (s *MemoryStore) ReplaceContents(ctx context.Context, cardID uuid.UUID, blocks []models.CardContent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]models.CardContent, len(blocks))
	for i := range blocks {
		blocks[i].CardID = cardID
		blocks[i].SortOrder = i
		if blocks[i].ID == uuid.Nil {
			blocks[i].ID = uuid.New()
		}
		blocks[i].CreatedAt = time.Now()
		stored[i] = blocks[i]
	}
	s.Contents[cardID] = stored
	return nil
}

// Orders

func (s *MemoryStore) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	o := *order
	s.Orders[order.ID] = &o
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	o := *order
	return &o, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders := []models.Order{}
	for _, o := range s.Orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.CardID != nil && o.CardID != *filter.CardID {
			continue
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		orders = append(orders, *o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return page(orders, filter.Limit, filter.Offset), nil
}

func (s *MemoryStore) ListOrdersByCard(ctx context.Context, cardID uuid.UUID) ([]models.Order, error) {
	return s.ListOrders(ctx, models.OrderFilter{CardID: &cardID})
}

func (s *MemoryStore) SetCheckoutDetails(ctx context.Context, orderID uuid.UUID, details models.CheckoutDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return nil
	}
	order.StripeCheckoutSessionID.String, order.StripeCheckoutSessionID.Valid = details.SessionID, true
	order.Currency.String, order.Currency.Valid = details.Currency, true
	order.UnitPrice.Int64, order.UnitPrice.Valid = details.UnitPrice, true
	order.Subtotal.Int64, order.Subtotal.Valid = details.Subtotal, true
	order.Total.Int64, order.Total.Valid = details.Total, true
	return nil
}

func (s *MemoryStore) MarkOrderPaid(ctx context.Context, orderID uuid.UUID, paymentIntentID string, paidAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return 0, nil
	}
	order.Status = models.OrderStatusPaid
	order.PaidAt.Time, order.PaidAt.Valid = paidAt, true
	if paymentIntentID != "" {
		order.StripePaymentIntentID.String, order.StripePaymentIntentID.Valid = paymentIntentID, true
	}
	return 1, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, update models.OrderStatusUpdate) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok {
		return 0, nil
	}
	order.Status = update.Status
	if update.TrackingNumber != nil {
		order.TrackingNumber.String, order.TrackingNumber.Valid = *update.TrackingNumber, true
	}
	if update.Carrier != nil {
		order.Carrier.String, order.Carrier.Valid = *update.Carrier, true
	}
	if update.PaidAt != nil {
		order.PaidAt.Time, order.PaidAt.Valid = *update.PaidAt, true
	}
	if update.ShippedAt != nil {
		order.ShippedAt.Time, order.ShippedAt.Valid = *update.ShippedAt, true
	}
	return 1, nil
}

func (s *MemoryStore) DeletePendingOrder(ctx context.Context, orderID, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.Orders[orderID]
	if !ok || order.UserID != userID || order.Status != models.OrderStatusPendingPayment {
		return 0, nil
	}
	delete(s.Orders, orderID)
	return 1, nil
}

func (s *MemoryStore) CountOrdersByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[models.OrderStatus]int64)
	for _, o := range s.Orders {
		counts[o.Status]++
	}
	return counts, nil
}

// Inventory

func (s *MemoryStore) CreateWoodItem(ctx context.Context, item *models.WoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Items {
		if existing.Slug == item.Slug {
			return models.ErrSlugTaken
		}
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	i := *item
	s.Items[item.ID] = &i
	return nil
}

func (s *MemoryStore) GetWoodItem(ctx context.Context, id uuid.UUID) (*models.WoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.Items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	i := *item
	return &i, nil
}

func (s *MemoryStore) GetWoodItemBySlug(ctx context.Context, slug string) (*models.WoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.Items {
		if item.Slug == slug {
			i := *item
			return &i, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *MemoryStore) ListWoodItems(ctx context.Context, filter models.WoodFilter) ([]models.WoodItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := strings.ToLower(filter.Search)
	items := []models.WoodItem{}
	for _, item := range s.Items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Species), search) {
			continue
		}
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Slug < items[j].Slug })
	return page(items, filter.Limit, filter.Offset), nil
}

func (s *MemoryStore) UpdateWoodItem(ctx context.Context, item *models.WoodItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.Items[item.ID]
	if !ok {
		return models.ErrNotFound
	}
	for id, other := range s.Items {
		if id != item.ID && other.Slug == item.Slug {
			return models.ErrSlugTaken
		}
	}
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = time.Now()
	i := *item
	s.Items[item.ID] = &i
	return nil
}

func (s *MemoryStore) DeleteWoodItem(ctx context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Items[id]; !ok {
		return 0, nil
	}
	delete(s.Items, id)
	return 1, nil
}

func (s *MemoryStore) IncrementWoodViews(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, ok := s.Items[id]; ok {
		item.ViewCount++
	}
	return nil
}

func (s *MemoryStore) CountWoodItems(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.Items)), nil
}

// Analytics

func (s *MemoryStore) RecordEvent(ctx context.Context, event *models.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	event.CreatedAt = time.Now().UTC()
	s.Events = append(s.Events, *event)
	return nil
}

func (s *MemoryStore) DailyViews(ctx context.Context, cardID uuid.UUID, since time.Time) ([]models.DailyViews, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := make(map[time.Time]int64)
	for _, e := range s.Events {
		if e.CardID != cardID || e.EventType != models.EventCardView || e.CreatedAt.Before(since) {
			continue
		}
		byDay[e.CreatedAt.UTC().Truncate(24*time.Hour)]++
	}
	daily := []models.DailyViews{}
	for day, views := range byDay {
		daily = append(daily, models.DailyViews{Day: day, Views: views})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Day.Before(daily[j].Day) })
	return daily, nil
}

// Profiles

func (s *MemoryStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	profile, ok := s.Profiles[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	p := *profile
	return &p, nil
}

func (s *MemoryStore) UpsertProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.Profiles[profile.ID]
	if !ok {
		profile.CreatedAt = time.Now()
		p := *profile
		s.Profiles[profile.ID] = &p
		return nil
	}
	if profile.Email.Valid {
		existing.Email = profile.Email
	}
	if profile.DisplayName.Valid {
		existing.DisplayName = profile.DisplayName
	}
	if profile.Organization.Valid {
		existing.Organization = profile.Organization
	}
	existing.UpdatedAt = time.Now()
	*profile = *existing
	return nil
}

func setNull(dst *string, valid *bool, value *string) {
	if value == nil {
		return
	}
	*dst, *valid = *value, *value != ""
}

func committed(status models.OrderStatus) bool {
	for _, c := range models.CommittedStatuses {
		if status == c {
			return true
		}
	}
	return false
}

func page[T any](rows []T, limit, offset uint64) []T {
	if offset >= uint64(len(rows)) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && limit < uint64(len(rows)) {
		rows = rows[:limit]
	}
	return rows
}
