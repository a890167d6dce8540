package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/middleware"
)

func TestAuthMiddleware_NoToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SupabaseJWTSecret: "test-secret",
	}

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SupabaseJWTSecret: "test-secret",
	}

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		SupabaseJWTSecret: "test-secret-key-for-jwt-signing-must-be-long-enough",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-123",
		"email": "user@example.com",
	})
	tokenString, _ := token.SignedString([]byte(cfg.SupabaseJWTSecret))

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg))
	router.GET("/test", func(c *gin.Context) {
		userID, exists := c.Get(middleware.UserIDKey)
		assert.True(t, exists)
		assert.Equal(t, "user-123", userID)
		assert.Equal(t, "user@example.com", c.GetString(middleware.UserEmailKey))
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}


func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return tokenString
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret-key-for-jwt-signing-must-be-long-enough"
	cfg := &config.Config{SupabaseJWTSecret: secret}

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"wrong scheme", "Basic abc", "invalid authorization header format"},
		{"two segments", "Bearer a.b", "JWT token must have 3 parts separated by dots"},
		{"expired", "Bearer " + signed(t, secret, jwt.MapClaims{"sub": "u", "exp": time.Now().Add(-time.Hour).Unix()}), "token has expired"},
		{"wrong secret", "Bearer " + signed(t, "another-secret", jwt.MapClaims{"sub": "u"}), "token signature is invalid"},
		{"no subject", "Bearer " + signed(t, secret, jwt.MapClaims{"email": "a@b.c"}), "missing user id in token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(middleware.AuthMiddleware(cfg))
			router.GET("/test", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.reason)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret-key-for-jwt-signing-must-be-long-enough"
	cfg := &config.Config{SupabaseJWTSecret: secret}

	router := gin.New()
	router.Use(middleware.OptionalAuth(cfg))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.UserIDKey))
	})

	for header, want := range map[string]string{
		"":                   "",
		"Bearer not.a.token": "",
		"Bearer " + signed(t, secret, jwt.MapClaims{"sub": "user-9"}): "user-9",
	} {
		req, _ := http.NewRequest("GET", "/test", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, w.Body.String())
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	secret := "test-secret-key-for-jwt-signing-must-be-long-enough"
	cfg := &config.Config{SupabaseJWTSecret: secret, AdminEmail: "Admin@WoodLinks.jp"}

	router := gin.New()
	router.Use(middleware.AuthMiddleware(cfg), middleware.RequireAdmin(cfg))
	router.GET("/admin", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	tests := []struct {
		email string
		code  int
	}{
		{"admin@woodlinks.jp", http.StatusOK},
		{"someone@woodlinks.jp", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		claims := jwt.MapClaims{"sub": "user-1"}
		if tt.email != "" {
			claims["email"] = tt.email
		}
		req, _ := http.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+signed(t, secret, claims))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, tt.code, w.Code, tt.email)
	}
}
