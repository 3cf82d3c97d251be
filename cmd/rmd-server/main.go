package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rmdhealth/rmd/internal/config"
	"github.com/rmdhealth/rmd/internal/domain/account"
	"github.com/rmdhealth/rmd/internal/domain/catalog"
	"github.com/rmdhealth/rmd/internal/domain/patient"
	"github.com/rmdhealth/rmd/internal/domain/referral"
	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
	"github.com/rmdhealth/rmd/internal/platform/db"
	"github.com/rmdhealth/rmd/internal/platform/ehr"
	"github.com/rmdhealth/rmd/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rmd-server",
		Short: "Referral management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the referral API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Printf("Applied %d migration(s)\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "migrations", "Migrations directory")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Printf("%03d %-30s %s\n", s.Version, s.Name, state)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "migrations", "Migrations directory")

	cmd.AddCommand(upCmd)
	cmd.AddCommand(statusCmd)
	return cmd
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry, cfg.ResetTokenTTL)

	// EHR adapter is optional. Without endpoint coordinates referral
	// creation simply skips the sync step.
	var syncer referral.Syncer
	if cfg.EHRConfigured() {
		var fhirClient *ehr.FHIRClient
		var hl7Client *ehr.HL7Client
		if cfg.FHIRBaseURL != "" {
			fhirClient = ehr.NewFHIRClient(cfg.FHIRBaseURL, cfg.FHIRAuthToken, cfg.FHIRTimeout)
		}
		if cfg.HL7Host != "" {
			hl7Client = ehr.NewHL7Client(cfg.HL7Host, cfg.HL7Port, cfg.HL7FacilityID, cfg.HL7Timeout)
		}
		syncer = ehr.NewAdapter(fhirClient, hl7Client, logger)
		logger.Info().
			Bool("fhir", fhirClient != nil).
			Bool("hl7", hl7Client != nil).
			Msg("ehr sync enabled")
	}

	accountSvc := account.NewService(account.NewRepoPG(pool), issuer, logger)
	patientSvc := patient.NewService(patient.NewRepoPG(pool))
	referralSvc := referral.NewService(referral.NewRepoPG(pool), patientSvc, syncer, logger)
	catalogSvc := catalog.NewService(catalog.NewRepoPG(pool))

	api := e.Group("/api")
	api.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	authed := api.Group("")
	authed.Use(auth.Middleware(issuer, accountSvc))

	account.NewHandler(accountSvc, cfg.ExposeResetToken).RegisterRoutes(api, authed)
	patient.NewHandler(patientSvc).RegisterRoutes(authed)
	referral.NewHandler(referralSvc).RegisterRoutes(authed)
	catalog.NewHandler(catalogSvc).RegisterRoutes(authed)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", middleware.MetricsHandler())

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
