package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
)

type OrdersHandler struct {
	orders *services.OrderService
}

func NewOrdersHandler(orders *services.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// CreateOrder godoc
// @Summary     Place an order
// @Description Creates a pending_payment order for one of the caller's cards. Pricing happens at checkout.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateOrderRequest true "Material, quantity and shipping address"
// @Success     201 {object} models.OrderResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/orders [post]
func (h *OrdersHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid card_id"})
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), callerFrom(c), services.OrderInput{
		CardID:             cardID,
		Material:           req.Material,
		Quantity:           req.Quantity,
		ShippingName:       req.ShippingName,
		ShippingPostalCode: req.ShippingPostalCode,
		ShippingAddress1:   req.ShippingAddress1,
		ShippingAddress2:   req.ShippingAddress2,
		ShippingPhone:      req.ShippingPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewOrderResponse(order))
}

// ListOrders godoc
// @Summary     List my orders
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListMyOrders(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderListResponse(orders))
}

// GetOrder godoc
// @Summary     Get an order
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID"
// @Success     200 {object} models.OrderResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /api/orders/{id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), callerFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewOrderResponse(order))
}

// DeleteOrder godoc
// @Summary     Delete an unpaid order
// @Description Only the owner may delete, and only while the order is pending_payment.
// @Tags        orders
// @Security    Bearer
// @Param       id path string true "Order ID"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /api/orders/{id} [delete]
func (h *OrdersHandler) DeleteOrder(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orders.DeleteOrder(c.Request.Context(), callerFrom(c), orderID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// StartCheckout godoc
// @Summary     Start checkout
// @Description Prices the order and creates a hosted Stripe Checkout session. Redirect the user to the returned URL.
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Order ID"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /api/orders/{id}/checkout [post]
func (h *OrdersHandler) StartCheckout(c *gin.Context) {
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.orders.StartCheckout(c.Request.Context(), callerFrom(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckoutResponse{
		OrderID:   result.OrderID.String(),
		SessionID: result.SessionID,
		URL:       result.URL,
	})
}
