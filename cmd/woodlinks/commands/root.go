package commands

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"woodlinks-backend/internal/config"
	"woodlinks-backend/internal/logger"
	"woodlinks-backend/internal/services"
	"woodlinks-backend/internal/supabase"
)

var (
	// Global flags
	dbURL    string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "woodlinks",
	Short: "WoodLinks back-office tooling",
	Long: `Operational commands for the WoodLinks backend: apply migrations, issue
blank cards for production and manage orders without the admin UI.

Configuration is read from the same environment (or .env file) as the server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (defaults to DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level")
}

// env bundles what every command needs.
type env struct {
	cfg    *config.Config
	db     *supabase.DatabaseClient
	logger logger.Logger
}

func setup() (*env, error) {
	if dbURL != "" {
		os.Setenv("DATABASE_URL", dbURL)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := supabase.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return &env{cfg: cfg, db: db, logger: logger.NewLogger(logLevel)}, nil
}

// adminCaller acts as the configured admin account.
func (e *env) adminCaller() services.Caller {
	return services.Caller{
		UserID: uuid.NewSHA1(uuid.NameSpaceURL, []byte("woodlinks-cli")),
		Email:  e.cfg.AdminEmail,
	}
}
