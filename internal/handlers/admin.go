package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
)

type AdminHandler struct {
	orders    *services.OrderService
	cards     *services.CardService
	admin     *services.AdminService
	inventory *services.InventoryService
}

func NewAdminHandler(
	orders *services.OrderService,
	cards *services.CardService,
	admin *services.AdminService,
	inventory *services.InventoryService,
) *AdminHandler {
	return &AdminHandler{orders: orders, cards: cards, admin: admin, inventory: inventory}
}

// ListOrders godoc
// @Summary     List all orders
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       status  query string false "Order status"
// @Param       card_id query string false "Card ID"
// @Param       limit   query int    false "Page size (max 200)"
// @Param       offset  query int    false "Offset"
// @Success     200 {object} models.OrderListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var filter models.OrderFilter
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		filter.Status = &s
	}
	if raw := c.Query("card_id"); raw != "" {
		cardID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid card_id"})
			return
		}
		filter.CardID = &cardID
	}
	filter.Limit, _ = strconv.ParseUint(c.Query("limit"), 10, 64)
	filter.Offset, _ = strconv.ParseUint(c.Query("offset"), 10, 64)

	orders, err := h.orders.AdminListOrders(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderListResponse(orders))
}

// UpdateOrderStatus godoc
// @Summary     Set order status
// @Description Any status may be set. shipped stamps shipped_at and paid stamps paid_at.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                          true "Order ID"
// @Param       request body models.UpdateOrderStatusRequest true "New status"
// @Success     200 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orders.AdminUpdateStatus(c.Request.Context(), callerFrom(c), orderID, services.StatusChange{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}

// Stats godoc
// @Summary     Dashboard counters
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.StatsResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.StatsResponse{
		OrdersByStatus: make(map[string]int64, len(models.OrderStatuses)),
		Cards:          stats.Cards,
		ClaimedCards:   stats.ClaimedCards,
		TotalViews:     stats.TotalViews,
		WoodItems:      stats.WoodItems,
	}
	for _, status := range models.OrderStatuses {
		resp.OrdersByStatus[string(status)] = stats.OrdersByStatus[status]
	}
	c.JSON(http.StatusOK, resp)
}

// ListCards godoc
// @Summary     List all cards
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       limit  query int false "Page size (max 200)"
// @Param       offset query int false "Offset"
// @Success     200 {object} models.CardListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/admin/cards [get]
func (h *AdminHandler) ListCards(c *gin.Context) {
	limit, _ := strconv.ParseUint(c.Query("limit"), 10, 64)
	offset, _ := strconv.ParseUint(c.Query("offset"), 10, 64)

	cards, err := h.cards.AdminListCards(c.Request.Context(), callerFrom(c), limit, offset)
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

// IssueCards godoc
// @Summary     Issue unclaimed cards
// @Description Creates blank cards for production. Each NFC chip should be written with the returned nfc_url.
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.IssueCardsRequest true "How many and which material"
// @Success     201 {object} models.IssuedCardsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /api/admin/cards [post]
func (h *AdminHandler) IssueCards(c *gin.Context) {
	var req models.IssueCardsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cards, err := h.cards.IssueCards(c.Request.Context(), callerFrom(c), req.Count, req.Material, req.Title)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.IssuedCardsResponse{Cards: make([]models.IssuedCard, len(cards))}
	for i, card := range cards {
		resp.Cards[i] = models.IssuedCard{
			ID:     card.ID.String(),
			Slug:   card.Slug,
			NFCURL: h.cards.NFCURL(card.ID),
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateCardStatus godoc
// @Summary     Set card status
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                         true "Card ID"
// @Param       request body models.UpdateCardStatusRequest true "New status"
// @Success     200 {object} models.CardResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/admin/cards/{id}/status [patch]
func (h *AdminHandler) UpdateCardStatus(c *gin.Context) {
	cardID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCardStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	card, err := h.cards.AdminSetStatus(c.Request.Context(), callerFrom(c), cardID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCardResponse(card, nil))
}

// ListInventory godoc
// @Summary     List wood inventory
// @Tags        admin
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Item status"
// @Param       q      query string false "Search name or species"
// @Success     200 {object} models.WoodListResponse
// @Router      /api/admin/inventory [get]
func (h *AdminHandler) ListInventory(c *gin.Context) {
	filter := models.WoodFilter{Search: c.Query("q")}
	if status := c.Query("status"); status != "" {
		s := models.WoodStatus(status)
		filter.Status = &s
	}
	filter.Limit, _ = strconv.ParseUint(c.Query("limit"), 10, 64)
	filter.Offset, _ = strconv.ParseUint(c.Query("offset"), 10, 64)

	items, err := h.inventory.List(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newWoodListResponse(items))
}

// CreateInventory godoc
// @Summary     Add a wood item
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.WoodItemRequest true "Item"
// @Success     201 {object} models.WoodItemResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/admin/inventory [post]
func (h *AdminHandler) CreateInventory(c *gin.Context) {
	var req models.WoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.inventory.Create(c.Request.Context(), callerFrom(c), woodInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewWoodItemResponse(item))
}

// UpdateInventory godoc
// @Summary     Replace a wood item
// @Tags        admin
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                 true "Item ID"
// @Param       request body models.WoodItemRequest true "Item"
// @Success     200 {object} models.WoodItemResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/admin/inventory/{id} [put]
func (h *AdminHandler) UpdateInventory(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.WoodItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.inventory.Update(c.Request.Context(), callerFrom(c), itemID, woodInput(req))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewWoodItemResponse(item))
}

// DeleteInventory godoc
// @Summary     Delete a wood item
// @Tags        admin
// @Security    Bearer
// @Param       id path string true "Item ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/admin/inventory/{id} [delete]
func (h *AdminHandler) DeleteInventory(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.inventory.Delete(c.Request.Context(), callerFrom(c), itemID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func woodInput(req models.WoodItemRequest) services.WoodInput {
	return services.WoodInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Species:     req.Species,
		Dimensions:  req.Dimensions,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Price:       req.Price,
		Stock:       req.Stock,
		Status:      req.Status,
	}
}
