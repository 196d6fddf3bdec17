package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hms/hms/internal/config"
	"github.com/hms/hms/internal/domain/admission"
	"github.com/hms/hms/internal/domain/billing"
	"github.com/hms/hms/internal/domain/patient"
	"github.com/hms/hms/internal/domain/pharmacy"
	"github.com/hms/hms/internal/domain/settings"
	"github.com/hms/hms/internal/domain/staff"
	"github.com/hms/hms/internal/domain/ward"
	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/db"
	"github.com/hms/hms/internal/platform/middleware"
	"github.com/hms/hms/internal/platform/realtime"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(branchCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HMS API server",
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
			schema, _ := cmd.Flags().GetString("schema")
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
			fmt.Printf("Running migrations on schema: %s\n", schema)

			count, err := migrator.Up(ctx, schema)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", "branch_main", "Target schema for migrations")
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
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
			statuses, err := migrator.Status(ctx, schema)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("Migration status for schema: %s\n", schema)
			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("schema", "branch_main", "Target schema for migrations")
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Rollback last migration (not supported)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("WARNING: migrate down is destructive and not supported by the built-in runner.")
			fmt.Println("Restore the branch schema from a backup instead.")
			return nil
		},
	})

	return cmd
}

func branchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Manage hospital branches",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new branch schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			dir, _ := cmd.Flags().GetString("dir")
			if name == "" {
				return fmt.Errorf("--name is required")
			}

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

			fmt.Printf("Creating branch schema: branch_%s\n", name)
			if err := db.CreateBranchSchema(ctx, pool, name, dir); err != nil {
				return err
			}
			fmt.Println("Branch created successfully.")
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Branch identifier (alphanumeric)")
	createCmd.Flags().String("dir", "./migrations", "Path to migrations directory")

	cmd.AddCommand(createCmd)
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, _ := cmd.Flags().GetString("user")
			branch, _ := cmd.Flags().GetString("branch")
			roles, _ := cmd.Flags().GetString("roles")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			token, err := auth.IssueToken(auth.JWTConfig{
				Issuer:     cfg.JWTIssuer,
				SigningKey: []byte(cfg.JWTSecret),
			}, userID, branch, strings.Split(roles, ","), ttl)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().String("user", "dev-user", "Subject claim")
	cmd.Flags().String("branch", "main", "Branch claim")
	cmd.Flags().String("roles", "admin", "Comma-separated roles")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	return cmd
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
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

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Branch-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.JWTIssuer,
			SigningKey: []byte(cfg.JWTSecret),
		}))
	}

	e.Use(db.BranchMiddleware(pool, cfg.DefaultBranch))

	e.GET("/health", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Realtime hub: handlers publish entity-change events, ward dashboards
	// subscribe over websocket.
	hub := realtime.NewHub()
	wsHandler := realtime.NewHandler(hub)
	wsHandler.RegisterRoutes(apiV1)

	runTx := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return db.WithTx(ctx, pool, fn)
	}

	// -- Register Domain Handlers --

	// Ward domain
	wardRepo := ward.NewWardRepoPG(pool)
	bedTypeRepo := ward.NewBedTypeRepoPG(pool)
	bedRepo := ward.NewBedRepoPG(pool)
	wardSvc := ward.NewService(wardRepo, bedTypeRepo, bedRepo)
	wardHandler := ward.NewHandler(wardSvc, hub)
	wardHandler.RegisterRoutes(apiV1)

	// Patient domain
	patientRepo := patient.NewRepoPG(pool)
	patientSvc := patient.NewService(patientRepo)
	patientHandler := patient.NewHandler(patientSvc)
	patientHandler.RegisterRoutes(apiV1)

	// Staff domain
	staffRepo := staff.NewRepoPG(pool)
	staffSvc := staff.NewService(staffRepo)
	staffHandler := staff.NewHandler(staffSvc)
	staffHandler.RegisterRoutes(apiV1)

	// Admission domain
	requestRepo := admission.NewRequestRepoPG(pool)
	admissionRepo := admission.NewAdmissionRepoPG(pool)
	admissionSvc := admission.NewService(requestRepo, admissionRepo, bedRepo, runTx)
	admissionHandler := admission.NewHandler(admissionSvc, hub)
	admissionHandler.RegisterRoutes(apiV1)

	// Billing domain
	ledgerRepo := billing.NewTransactionRepoPG(pool)
	billingSvc := billing.NewService(ledgerRepo, admissionSvc, bedRepo, bedTypeRepo, runTx)
	billingHandler := billing.NewHandler(billingSvc, hub)
	billingHandler.RegisterRoutes(apiV1)

	// Pharmacy domain
	medicineRepo := pharmacy.NewRepoPG(pool)
	pharmacySvc := pharmacy.NewService(medicineRepo, pharmacy.TxRunner(runTx))
	pharmacyHandler := pharmacy.NewHandler(pharmacySvc)
	pharmacyHandler.RegisterRoutes(apiV1)

	// Settings domain
	scheduleRepo := settings.NewScheduleRepoPG(pool)
	itemRepo := settings.NewServiceItemRepoPG(pool)
	settingsSvc := settings.NewService(scheduleRepo, itemRepo, settings.TxRunner(runTx))
	settingsHandler := settings.NewHandler(settingsSvc)
	settingsHandler.RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	return nil
}
