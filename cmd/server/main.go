// @title           WoodLinks Backend API
// @version         1.0.0
// @description     Backend API for WoodLinks NFC wooden business cards: card profiles, orders, Stripe checkout, public pages and the admin back-office.

// @contact.name   API Support
// @contact.email  support@woodlinks.jp

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"woodlinks-backend/docs"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/database"
	"woodlinks-backend/internal/handlers"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/notify"
	"woodlinks-backend/internal/payments"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	if baseURL, err := url.Parse(cfg.BaseURL); err == nil && baseURL.Host != "" {
		docs.SwaggerInfo.Host = baseURL.Host
		if baseURL.Scheme == "https" {
			docs.SwaggerInfo.Schemes = []string{"https", "http"}
		} else {
			docs.SwaggerInfo.Schemes = []string{"http", "https"}
		}
	}

	dbClient, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		log.WithField("error", err.Error()).Fatal("Failed to connect to database")
	}
	defer dbClient.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	if err := database.NewMigratorWithDB(dbClient.DB(), log).Run(migrateCtx); err != nil {
		cancel()
		log.WithField("error", err.Error()).Fatal("Migration failed")
	}
	cancel()
	log.Info("Migrations completed successfully")

	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, cfg.SupabaseStorageBucket)

	var authService *services.AuthService
	if authClient, err := supabase.NewAuthClient(cfg); err != nil {
		log.WithField("error", err.Error()).Warn("Supabase Auth unavailable, /api/auth routes disabled")
	} else {
		authService = services.NewAuthService(authClient, dbClient, log)
	}

	if !cfg.PaymentsEnabled() {
		log.Warn("STRIPE_SECRET_KEY not set, checkout is disabled")
	}
	gateway := payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	mailer := notify.NewSMTPMailer(&notify.Config{
		SMTPHost:     cfg.SMTPHost,
		SMTPPort:     cfg.SMTPPort,
		SMTPUsername: cfg.SMTPUsername,
		SMTPPassword: cfg.SMTPPassword,
		FromEmail:    cfg.SMTPFromEmail,
		FromName:     cfg.SMTPFromName,
		AdminEmail:   cfg.AdminEmail,
		BaseURL:      cfg.BaseURL,
	}, log)

	cardService := services.NewCardService(dbClient, dbClient, dbClient, storageClient, cfg, log)
	orderService := services.NewOrderService(dbClient, dbClient, gateway, mailer, cfg, log)
	svc := handlers.Services{
		Orders:    orderService,
		Cards:     cardService,
		Inventory: services.NewInventoryService(dbClient, cfg, log),
		Admin:     services.NewAdminService(dbClient, dbClient, dbClient, cfg),
		Auth:      authService,
	}

	router := handlers.NewRouter(cfg, svc, log)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField("error", err.Error()).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithField("error", err.Error()).Error("Server forced to shutdown")
	}
	cardService.Wait()
	orderService.Wait()
	log.Info("Server stopped")
}
