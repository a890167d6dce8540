package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"woodlinks-backend/internal/middleware"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
)

// callerFrom reads the identity set by the auth middleware. Anonymous
// requests yield a zero Caller.
func callerFrom(c *gin.Context) services.Caller {
	userID, err := uuid.Parse(c.GetString(middleware.UserIDKey))
	if err != nil {
		return services.Caller{}
	}
	return services.Caller{UserID: userID, Email: c.GetString(middleware.UserEmailKey)}
}

func visitFrom(c *gin.Context) services.Visit {
	return services.Visit{
		Referrer:  c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
		Viewer:    callerFrom(c).UserID,
	}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}
