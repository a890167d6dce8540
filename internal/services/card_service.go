package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/vcard"
)

const (
	slugPattern      = `^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`
	phonePattern     = `^\+?[0-9][0-9()\- ]{4,19}$`
	maxContentBlocks = 50
	maxAvatarBytes   = 5 << 20
	analyticsWindow  = 30 * 24 * time.Hour
	backgroundBudget = 5 * time.Second
	defaultCardTitle = "WoodLinks Card"
)

var avatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

var statusMessages = map[models.CardStatus]string{
	models.CardStatusDraft:        "This card has not been published yet.",
	models.CardStatusDisabled:     "This card has been disabled.",
	models.CardStatusLostReissued: "This card was reported lost and has been replaced.",
	models.CardStatusTransferred:  "This card has been transferred to a new owner.",
}

type CardInput struct {
	Title        string
	Slug         string
	Description  string
	MaterialType string
	Theme        string
}

type ContentInput struct {
	Type  string
	Label string
	Value string
}

// Visit describes a hit on a public surface. Viewer is uuid.Nil for
// anonymous visitors.
type Visit struct {
	Referrer  string
	UserAgent string
	Viewer    uuid.UUID
}

type CardDetails struct {
	Card     *models.Card
	Contents []models.CardContent
}

// PublicCard is what /p/:slug shows. ActivationRequired is set for cards
// that have not been claimed yet; Contents is empty in that case.
type PublicCard struct {
	Card               *models.Card
	Contents           []models.CardContent
	ActivationRequired bool
	Preview            bool
}

// TapResult says where a physical card tap leads: a redirect, or a message
// when the card is not viewable.
type TapResult struct {
	Card     *models.Card
	Redirect string
	Message  string
}

type CardAnalytics struct {
	Card  *models.Card
	Daily []models.DailyViews
}

type CardService struct {
	cards     CardStore
	analytics AnalyticsStore
	profiles  ProfileStore
	avatars   AvatarStorage
	config    *config.Config
	logger    logger.Logger
	now       func() time.Time

	background sync.WaitGroup
}

func NewCardService(
	cards CardStore,
	analytics AnalyticsStore,
	profiles ProfileStore,
	avatars AvatarStorage,
	cfg *config.Config,
	log logger.Logger,
) *CardService {
	return &CardService{
		cards:     cards,
		analytics: analytics,
		profiles:  profiles,
		avatars:   avatars,
		config:    cfg,
		logger:    log,
		now:       time.Now,
	}
}

// Wait blocks until fire-and-forget view tracking has finished.
func (s *CardService) Wait() {
	s.background.Wait()
}

func (s *CardService) CreateCard(ctx context.Context, caller Caller, input CardInput) (*models.Card, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if slug != "" && !govalidator.Matches(slug, slugPattern) {
		return nil, invalid("slug", "must be 3-64 lowercase letters, digits or hyphens")
	}
	if input.MaterialType != "" && !models.Material(input.MaterialType).Valid() {
		return nil, ErrUnknownMaterial
	}

	card := &models.Card{
		ID:           uuid.New(),
		OwnerID:      uuid.NullUUID{UUID: caller.UserID, Valid: true},
		Slug:         slug,
		Title:        title,
		Description:  optional(input.Description),
		Status:       models.CardStatusDraft,
		MaterialType: optional(input.MaterialType),
		Theme:        optional(input.Theme),
	}

	if slug != "" {
		if err := s.cards.CreateCard(ctx, card); err != nil {
			return nil, err
		}
		return card, nil
	}
	if err := s.createWithGeneratedSlug(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *CardService) createWithGeneratedSlug(ctx context.Context, card *models.Card) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		card.Slug = generateSlug()
		err = s.cards.CreateCard(ctx, card)
		if !errors.Is(err, models.ErrSlugTaken) {
			return err
		}
	}
	return err
}

func generateSlug() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func (s *CardService) GetCard(ctx context.Context, caller Caller, cardID uuid.UUID) (*CardDetails, error) {
	card, err := s.ownedCard(ctx, caller, cardID)
	if err != nil {
		return nil, err
	}
	contents, err := s.cards.ListContents(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	return &CardDetails{Card: card, Contents: contents}, nil
}

func (s *CardService) ListMyCards(ctx context.Context, caller Caller) ([]models.Card, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	return s.cards.ListCardsByOwner(ctx, caller.UserID)
}

// UpdateCard applies a partial update. The write itself is scoped to the
// owner, so a concurrent transfer cannot be overwritten.
func (s *CardService) UpdateCard(ctx context.Context, caller Caller, cardID uuid.UUID, patch models.CardPatch) (*models.Card, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return s.ownedCard(ctx, caller, cardID)
	}

	rows, err := s.cards.UpdateCard(ctx, cardID, caller.UserID, patch)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		if _, err := s.ownedCard(ctx, caller, cardID); err != nil {
			return nil, err
		}
		return nil, models.ErrNotFound
	}
	return s.cards.GetCard(ctx, cardID)
}

func validatePatch(patch *models.CardPatch) error {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return invalid("title", "cannot be empty")
		}
		patch.Title = &title
	}
	if patch.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*patch.Slug))
		if !govalidator.Matches(slug, slugPattern) {
			return invalid("slug", "must be 3-64 lowercase letters, digits or hyphens")
		}
		patch.Slug = &slug
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return ErrInvalidStatus
	}
	if patch.MaterialType != nil && *patch.MaterialType != "" && !models.Material(*patch.MaterialType).Valid() {
		return ErrUnknownMaterial
	}
	return nil
}

// DeleteCard removes an owned card unless money has been taken for it.
func (s *CardService) DeleteCard(ctx context.Context, caller Caller, cardID uuid.UUID) error {
	if err := requireUser(caller); err != nil {
		return err
	}

	rows, err := s.cards.DeleteCard(ctx, cardID, caller.UserID)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.ownedCard(ctx, caller, cardID); err != nil {
			return err
		}
		return ErrCardHasActiveOrders
	}

	if s.avatars != nil {
		if err := s.avatars.DeleteCardFiles(caller.UserID, cardID); err != nil {
			s.logger.WithFields(map[string]interface{}{
				"card_id": cardID.String(),
				"error":   err.Error(),
			}).Warn("Failed to remove card files")
		}
	}
	return nil
}

func (s *CardService) ReplaceContents(ctx context.Context, caller Caller, cardID uuid.UUID, inputs []ContentInput) ([]models.CardContent, error) {
	if _, err := s.ownedCard(ctx, caller, cardID); err != nil {
		return nil, err
	}
	if len(inputs) > maxContentBlocks {
		return nil, invalid("blocks", fmt.Sprintf("at most %d blocks are allowed", maxContentBlocks))
	}

	blocks := make([]models.CardContent, 0, len(inputs))
	for i, input := range inputs {
		block, err := validateContent(i, input)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	if err := s.cards.ReplaceContents(ctx, cardID, blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func validateContent(index int, input ContentInput) (models.CardContent, error) {
	field := fmt.Sprintf("blocks[%d]", index)
	kind := models.ContentType(input.Type)
	value := strings.TrimSpace(input.Value)

	if !kind.Valid() {
		return models.CardContent{}, invalid(field+".type", "must be link, text, phone or email")
	}
	if value == "" {
		return models.CardContent{}, invalid(field+".value", "is required")
	}
	if !govalidator.StringLength(value, "1", "2000") {
		return models.CardContent{}, invalid(field+".value", "is too long")
	}

	switch kind {
	case models.ContentTypeLink:
		if !govalidator.IsRequestURL(value) {
			return models.CardContent{}, invalid(field+".value", "must be an absolute URL")
		}
	case models.ContentTypeEmail:
		if !govalidator.IsEmail(value) {
			return models.CardContent{}, invalid(field+".value", "must be an email address")
		}
	case models.ContentTypePhone:
		if !govalidator.Matches(value, phonePattern) {
			return models.CardContent{}, invalid(field+".value", "must be a phone number")
		}
	}

	return models.CardContent{
		ID:    uuid.New(),
		Type:  kind,
		Label: strings.TrimSpace(input.Label),
		Value: value,
	}, nil
}

func (s *CardService) UploadAvatar(ctx context.Context, caller Caller, cardID uuid.UUID, filename, contentType string, data []byte) (*models.Card, error) {
	if _, err := s.ownedCard(ctx, caller, cardID); err != nil {
		return nil, err
	}
	if s.avatars == nil {
		return nil, errors.New("avatar storage is not configured")
	}
	if len(data) == 0 {
		return nil, invalid("file", "is empty")
	}
	if len(data) > maxAvatarBytes {
		return nil, invalid("file", "must be 5MB or smaller")
	}
	if !avatarTypes[contentType] {
		return nil, invalid("file", "must be a JPEG, PNG, WebP or GIF image")
	}

	url, err := s.avatars.UploadAvatar(caller.UserID, cardID, filename, contentType, data)
	if err != nil {
		return nil, err
	}

	return s.UpdateCard(ctx, caller, cardID, models.CardPatch{AvatarURL: &url})
}

// ClaimCard binds an unclaimed card to the caller. Only the first of several
// concurrent claimants succeeds; the rest get ErrCardAlreadyClaimed.
func (s *CardService) ClaimCard(ctx context.Context, caller Caller, cardID uuid.UUID) (*models.Card, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}

	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Claimed() {
		return nil, ErrCardAlreadyClaimed
	}

	rows, err := s.cards.ClaimCard(ctx, cardID, caller.UserID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrCardAlreadyClaimed
	}

	s.logger.WithFields(map[string]interface{}{
		"card_id": cardID.String(),
		"user_id": caller.UserID.String(),
	}).Info("Card claimed")

	return s.cards.GetCard(ctx, cardID)
}

func (s *CardService) CardOrders(ctx context.Context, caller Caller, cardID uuid.UUID) ([]models.Order, error) {
	if _, err := s.ownedCard(ctx, caller, cardID); err != nil {
		return nil, err
	}
	return s.cards.ListOrdersByCard(ctx, cardID)
}

func (s *CardService) Analytics(ctx context.Context, caller Caller, cardID uuid.UUID) (*CardAnalytics, error) {
	card, err := s.ownedCard(ctx, caller, cardID)
	if err != nil {
		return nil, err
	}
	since := s.now().UTC().Add(-analyticsWindow).Truncate(24 * time.Hour)
	daily, err := s.analytics.DailyViews(ctx, cardID, since)
	if err != nil {
		return nil, err
	}
	return &CardAnalytics{Card: card, Daily: daily}, nil
}

// PublicCard resolves /p/:slug. Published cards count a view in the
// background; unclaimed cards ask the visitor to activate them. The owner
// may preview an unpublished card, which is never counted.
func (s *CardService) PublicCard(ctx context.Context, slug string, visit Visit) (*PublicCard, error) {
	card, err := s.cards.GetCardBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if !card.Claimed() {
		return &PublicCard{Card: card, ActivationRequired: true}, nil
	}
	preview := card.Status != models.CardStatusPublished
	if preview && (visit.Viewer == uuid.Nil || !card.OwnedBy(visit.Viewer)) {
		return nil, models.ErrNotFound
	}

	contents, err := s.cards.ListContents(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	if preview {
		return &PublicCard{Card: card, Contents: contents, Preview: true}, nil
	}

	cardID := card.ID
	s.track(cardID, models.EventCardView, visit, func(ctx context.Context) error {
		return s.cards.IncrementCardViews(ctx, cardID)
	})

	return &PublicCard{Card: card, Contents: contents}, nil
}

// ResolveTap decides what happens when a physical card is tapped.
func (s *CardService) ResolveTap(ctx context.Context, cardID uuid.UUID, visit Visit) (*TapResult, error) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}

	redirect := "/p/" + card.Slug
	if !card.Claimed() {
		return &TapResult{Card: card, Redirect: redirect}, nil
	}
	if card.Status == models.CardStatusPublished {
		s.track(card.ID, models.EventNFCTap, visit, nil)
		return &TapResult{Card: card, Redirect: redirect}, nil
	}

	message, ok := statusMessages[card.Status]
	if !ok {
		message = "This card is not available."
	}
	return &TapResult{Card: card, Message: message}, nil
}

func (s *CardService) VCardBySlug(ctx context.Context, slug string, visit Visit) (*models.Card, string, error) {
	card, err := s.cards.GetCardBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	return s.exportVCard(ctx, card, visit)
}

func (s *CardService) VCardByID(ctx context.Context, cardID uuid.UUID, visit Visit) (*models.Card, string, error) {
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, "", err
	}
	return s.exportVCard(ctx, card, visit)
}

func (s *CardService) exportVCard(ctx context.Context, card *models.Card, visit Visit) (*models.Card, string, error) {
	if !card.Claimed() || card.Status != models.CardStatusPublished {
		return nil, "", models.ErrNotFound
	}

	contents, err := s.cards.ListContents(ctx, card.ID)
	if err != nil {
		return nil, "", err
	}

	contact := vcard.Contact{
		Card:       card,
		Contents:   contents,
		ProfileURL: s.config.BaseURL + "/p/" + card.Slug,
	}
	if s.profiles != nil {
		profile, err := s.profiles.GetProfile(ctx, card.OwnerID.UUID)
		switch {
		case err == nil:
			contact.Organization = profile.Organization.String
		case !errors.Is(err, models.ErrNotFound):
			return nil, "", err
		}
	}

	s.track(card.ID, models.EventVCardDownload, visit, nil)
	return card, vcard.Build(contact), nil
}

// IssueCards mints unclaimed cards for production. Their NFC chips point at
// /c/<id>.
func (s *CardService) IssueCards(ctx context.Context, caller Caller, count int, material, title string) ([]models.Card, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	if count < 1 || count > 500 {
		return nil, invalid("count", "must be between 1 and 500")
	}
	if material != "" && !models.Material(material).Valid() {
		return nil, ErrUnknownMaterial
	}
	if strings.TrimSpace(title) == "" {
		title = defaultCardTitle
	}

	issued := make([]models.Card, 0, count)
	for i := 0; i < count; i++ {
		card := &models.Card{
			ID:           uuid.New(),
			Title:        strings.TrimSpace(title),
			Status:       models.CardStatusDraft,
			MaterialType: optional(material),
		}
		if err := s.createWithGeneratedSlug(ctx, card); err != nil {
			return issued, fmt.Errorf("issued %d of %d cards: %w", len(issued), count, err)
		}
		issued = append(issued, *card)
	}

	s.logger.WithFields(map[string]interface{}{
		"count":    len(issued),
		"material": material,
	}).Info("Cards issued")
	return issued, nil
}

// AdminListCards pages through every card, newest first.
func (s *CardService) AdminListCards(ctx context.Context, caller Caller, limit, offset uint64) ([]models.Card, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	if limit == 0 || limit > 200 {
		limit = 50
	}
	return s.cards.ListCards(ctx, limit, offset)
}

func (s *CardService) NFCURL(cardID uuid.UUID) string {
	return s.config.BaseURL + "/c/" + cardID.String()
}

func (s *CardService) AdminSetStatus(ctx context.Context, caller Caller, cardID uuid.UUID, status string) (*models.Card, error) {
	if err := requireAdmin(s.config, caller); err != nil {
		return nil, err
	}
	cs := models.CardStatus(status)
	if !cs.Valid() {
		return nil, ErrInvalidStatus
	}
	rows, err := s.cards.UpdateCardStatus(ctx, cardID, cs)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, models.ErrNotFound
	}
	return s.cards.GetCard(ctx, cardID)
}

func (s *CardService) ownedCard(ctx context.Context, caller Caller, cardID uuid.UUID) (*models.Card, error) {
	if err := requireUser(caller); err != nil {
		return nil, err
	}
	card, err := s.cards.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if !card.OwnedBy(caller.UserID) {
		return nil, ErrForbidden
	}
	return card, nil
}

// track records an analytics event, plus any extra write, without holding
// up the response. Failures are logged and dropped.
func (s *CardService) track(cardID uuid.UUID, eventType models.AnalyticsEventType, visit Visit, extra func(ctx context.Context) error) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()

		ctx, cancel := context.WithTimeout(context.Background(), backgroundBudget)
		defer cancel()

		log := s.logger.WithFields(map[string]interface{}{
			"card_id": cardID.String(),
			"event":   string(eventType),
		})

		if extra != nil {
			if err := extra(ctx); err != nil {
				log.WithField("error", err.Error()).Warn("Background card update failed")
			}
		}
		if s.analytics == nil {
			return
		}
		event := &models.AnalyticsEvent{
			CardID:    cardID,
			EventType: eventType,
			Referrer:  optional(visit.Referrer),
			UserAgent: optional(visit.UserAgent),
		}
		if err := s.analytics.RecordEvent(ctx, event); err != nil {
			log.WithField("error", err.Error()).Warn("Failed to record analytics event")
		}
	}()
}
