package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/models"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

var (
	errMissingHeader = errors.New("missing authorization header")
	errHeaderFormat  = errors.New("invalid authorization header format")
	errTokenFormat   = errors.New("JWT token must have 3 parts separated by dots")
	errMissingSub    = errors.New("missing user id in token")
)

// AuthMiddleware rejects requests without a valid Supabase access token.
// On success the user id (sub) and email claims are stored in the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, email, err := authenticate(cfg, c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid token",
				Message: err.Error(),
			})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserEmailKey, email)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through. A bad token is treated as anonymous.
func OptionalAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if userID, email, err := authenticate(cfg, header); err == nil {
				c.Set(UserIDKey, userID)
				c.Set(UserEmailKey, email)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.IsAdminEmail(c.GetString(UserEmailKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Error: "admin access required",
			})
			return
		}
		c.Next()
	}
}

func authenticate(cfg *config.Config, authHeader string) (string, string, error) {
	if authHeader == "" {
		return "", "", errMissingHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", "", errHeaderFormat
	}

	tokenString := strings.TrimSpace(parts[1])
	if len(strings.Split(tokenString, ".")) != 3 {
		return "", "", errTokenFormat
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Supabase signs access tokens with HS256 and the project JWT secret.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		if cfg.SupabaseJWTSecret == "" {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.SupabaseJWTSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", "", errors.New("token has expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", "", errors.New("token signature is invalid")
		default:
			return "", "", err
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", "", errMissingSub
	}
	email, _ := claims["email"].(string)

	return sub, email, nil
}
