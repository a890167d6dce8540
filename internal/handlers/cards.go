package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
)

const maxAvatarUpload = 5<<20 + 1

type CardsHandler struct {
	cards *services.CardService
}

func NewCardsHandler(cards *services.CardService) *CardsHandler {
	return &CardsHandler{cards: cards}
}

// CreateCard godoc
// @Summary     Create a card
// @Description Creates a draft card owned by the caller. A slug is generated when none is given.
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateCardRequest true "Card"
// @Success     201 {object} models.CardResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/cards [post]
func (h *CardsHandler) CreateCard(c *gin.Context) {
	var req models.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	card, err := h.cards.CreateCard(c.Request.Context(), callerFrom(c), services.CardInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		MaterialType: req.MaterialType,
		Theme:        req.Theme,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewCardResponse(card, nil))
}

// ListCards godoc
// @Summary     List my cards
// @Tags        cards
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CardListResponse
// @Router      /api/cards [get]
func (h *CardsHandler) ListCards(c *gin.Context) {
	cards, err := h.cards.ListMyCards(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.CardListResponse{Cards: make([]models.CardResponse, len(cards))}
	for i := range cards {
		resp.Cards[i] = models.NewCardResponse(&cards[i], nil)
	}
	c.JSON(http.StatusOK, resp)
}

// GetCard godoc
// @Summary     Get one of my cards with its content blocks
// @Tags        cards
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Card ID"
// @Success     200 {object} models.CardResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/cards/{id} [get]
func (h *CardsHandler) GetCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	details, err := h.cards.GetCard(c.Request.Context(), callerFrom(c), cardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCardResponse(details.Card, details.Contents))
}

// UpdateCard godoc
// @Summary     Update a card
// @Description Partial update; omitted fields are left unchanged.
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                   true "Card ID"
// @Param       request body models.UpdateCardRequest true "Fields to change"
// @Success     200 {object} models.CardResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/cards/{id} [put]
func (h *CardsHandler) UpdateCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	patch := models.CardPatch{
		Title:        req.Title,
		Description:  req.Description,
		Slug:         req.Slug,
		MaterialType: req.MaterialType,
		Theme:        req.Theme,
		WoodOrigin:   req.WoodOrigin,
		WoodAge:      req.WoodAge,
		WoodStory:    req.WoodStory,
	}
	if req.Status != nil {
		status := models.CardStatus(*req.Status)
		patch.Status = &status
	}

	card, err := h.cards.UpdateCard(c.Request.Context(), callerFrom(c), cardID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCardResponse(card, nil))
}

// DeleteCard godoc
// @Summary     Delete a card
// @Description Fails with 409 while any order of the card is paid, in production, shipped or delivered.
// @Tags        cards
// @Security    Bearer
// @Param       id path string true "Card ID"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/cards/{id} [delete]
func (h *CardsHandler) DeleteCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cards.DeleteCard(c.Request.Context(), callerFrom(c), cardID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReplaceContents godoc
// @Summary     Replace content blocks
// @Description Replaces the ordered list of link/text/phone/email blocks shown on the card page.
// @Tags        cards
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                        true "Card ID"
// @Param       request body models.ReplaceContentsRequest true "Blocks in display order"
// @Success     200 {object} models.CardResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/cards/{id}/contents [put]
func (h *CardsHandler) ReplaceContents(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ReplaceContentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	inputs := make([]services.ContentInput, len(req.Blocks))
	for i, block := range req.Blocks {
		inputs[i] = services.ContentInput{Type: block.Type, Label: block.Label, Value: block.Value}
	}

	caller := callerFrom(c)
	if _, err := h.cards.ReplaceContents(c.Request.Context(), caller, cardID, inputs); err != nil {
		respondError(c, err)
		return
	}

	details, err := h.cards.GetCard(c.Request.Context(), caller, cardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCardResponse(details.Card, details.Contents))
}

// UploadAvatar godoc
// @Summary     Upload card avatar
// @Tags        cards
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id   path     string true "Card ID"
// @Param       file formData file   true "Image (JPEG, PNG, WebP or GIF, max 5MB)"
// @Success     200 {object} models.CardResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/cards/{id}/avatar [post]
func (h *CardsHandler) UploadAvatar(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "missing file", Message: err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to open file", Message: err.Error()})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxAvatarUpload))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to read file", Message: err.Error()})
		return
	}

	card, err := h.cards.UploadAvatar(c.Request.Context(), callerFrom(c), cardID,
		fileHeader.Filename, http.DetectContentType(data), data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCardResponse(card, nil))
}

// ClaimCard godoc
// @Summary     Claim an unowned card
// @Description Binds a freshly delivered physical card to the caller. Only the first claim succeeds.
// @Tags        cards
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Card ID"
// @Success     200 {object} models.ClaimResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/cards/{id}/claim [post]
func (h *CardsHandler) ClaimCard(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	card, err := h.cards.ClaimCard(c.Request.Context(), callerFrom(c), cardID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ClaimResponse{
		Card:     models.NewCardResponse(card, nil),
		Redirect: "/cards/" + card.ID.String() + "/edit",
	})
}

// CardOrders godoc
// @Summary     Orders of a card
// @Description Newest first; the first entry is the card's current order.
// @Tags        cards
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Card ID"
// @Success     200 {object} models.OrderListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/cards/{id}/orders [get]
func (h *CardsHandler) CardOrders(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	orders, err := h.cards.CardOrders(c.Request.Context(), callerFrom(c), cardID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderListResponse(orders))
}

// CardAnalytics godoc
// @Summary     Card view analytics
// @Description Total view count plus daily views over the last 30 days.
// @Tags        cards
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Card ID"
// @Success     200 {object} models.AnalyticsResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/cards/{id}/analytics [get]
func (h *CardsHandler) CardAnalytics(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	analytics, err := h.cards.Analytics(c.Request.Context(), callerFrom(c), cardID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.AnalyticsResponse{
		CardID:    analytics.Card.ID.String(),
		ViewCount: analytics.Card.ViewCount,
		Daily:     make([]models.DailyViewsItem, len(analytics.Daily)),
	}
	for i, day := range analytics.Daily {
		resp.Daily[i] = models.DailyViewsItem{Day: day.Day.Format("2006-01-02"), Views: day.Views}
	}
	c.JSON(http.StatusOK, resp)
}
