package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/payments"
	"woodlinks-backend/internal/services"
)

const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	orders *services.OrderService
	logger logger.Logger
}

func NewWebhookHandler(orders *services.OrderService, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{orders: orders, logger: log}
}

// HandleStripeWebhook godoc
// @Summary     Stripe webhook endpoint
// @Description Receives signed Stripe events. checkout.session.completed marks the order from metadata.order_id as paid. Other events are acknowledged and ignored.
// @Tags        webhooks
// @Accept      json
// @Produce     json
// @Param       Stripe-Signature header string true "Stripe signature header"
// @Success     200 {object} map[string]bool "received"
// @Failure     400 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /api/webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read request body",
			Message: err.Error(),
		})
		return
	}

	err = h.orders.HandlePaymentEvent(c.Request.Context(), body, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, payments.ErrInvalidSignature), errors.Is(err, payments.ErrNotConfigured):
		h.logger.WithField("error", err.Error()).Warn("Rejected webhook delivery")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "webhook verification failed"})
	default:
		h.logger.WithField("error", err.Error()).Error("Failed to apply webhook event")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to process event"})
	}
}
