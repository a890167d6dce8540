package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/payments"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/supabase"
)

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "validation failed", Message: validation.Error()})
	case errors.Is(err, services.ErrUnknownMaterial), errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, supabase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "not found"})
	case errors.Is(err, models.ErrSlugTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: "slug may be taken"})
	case errors.Is(err, services.ErrCardAlreadyClaimed),
		errors.Is(err, services.ErrOrderNotDeletable),
		errors.Is(err, services.ErrOrderNotPending),
		errors.Is(err, services.ErrCardHasActiveOrders):
		c.JSON(http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrPaymentsDisabled), errors.Is(err, payments.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "payments are not configured"})
	case errors.Is(err, services.ErrPaymentProvider):
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Error: "payment provider error", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "internal error", Message: err.Error()})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
}
