package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"woodlinks-backend/internal/models"
	"woodlinks-backend/internal/services"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp godoc
// @Summary     Sign up with email and password
// @Description Session tokens are empty when email confirmation is required.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.CredentialsRequest true "Credentials"
// @Success     201 {object} models.SessionResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "signup failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusCreated, newSessionResponse(session))
}

// Login godoc
// @Summary     Log in with email and password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.CredentialsRequest true "Credentials"
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// Refresh godoc
// @Summary     Refresh an access token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.RefreshRequest true "Refresh token"
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.auth.Refresh(req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(session))
}

// MagicLink godoc
// @Summary     Email a sign-in link
// @Tags        auth
// @Accept      json
// @Param       request body models.MagicLinkRequest true "Email"
// @Success     202
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/auth/magic-link [post]
func (h *AuthHandler) MagicLink(c *gin.Context) {
	var req models.MagicLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.auth.SendMagicLink(req.Email); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "failed to send magic link", Message: err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}

// GetProfile godoc
// @Summary     Get my profile
// @Tags        profile
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ProfileResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/profile [get]
func (h *AuthHandler) GetProfile(c *gin.Context) {
	profile, err := h.auth.GetProfile(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProfileResponse(profile))
}

// UpdateProfile godoc
// @Summary     Update my profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.UpdateProfileRequest true "Profile fields"
// @Success     200 {object} models.ProfileResponse
// @Failure     401 {object} models.ErrorResponse
// @Router      /api/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	profile, err := h.auth.UpdateProfile(c.Request.Context(), callerFrom(c), req.DisplayName, req.Organization)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewProfileResponse(profile))
}

func newSessionResponse(session *models.AuthSession) models.SessionResponse {
	return models.SessionResponse{
		UserID:       session.UserID.String(),
		Email:        session.Email,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresIn:    session.ExpiresIn,
	}
}
