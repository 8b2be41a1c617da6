package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/resource-directory/internal"
	"github.com/frahmantamala/resource-directory/internal/auth"
	authRepo "github.com/frahmantamala/resource-directory/internal/auth/postgres"
	"github.com/frahmantamala/resource-directory/internal/core/events"
	"github.com/frahmantamala/resource-directory/internal/importer"
	"github.com/frahmantamala/resource-directory/internal/lookup"
	lookupRepo "github.com/frahmantamala/resource-directory/internal/lookup/postgres"
	"github.com/frahmantamala/resource-directory/internal/resource"
	resourceRepo "github.com/frahmantamala/resource-directory/internal/resource/postgres"
	"github.com/frahmantamala/resource-directory/internal/transport/rest"
	"github.com/frahmantamala/resource-directory/internal/transport/swagger"
	"github.com/frahmantamala/resource-directory/internal/user"
	userRepo "github.com/frahmantamala/resource-directory/internal/user/postgres"
	"github.com/frahmantamala/resource-directory/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	imp, err := setupRoutes(deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		imp.Shutdown()
		if sqlDB, derr := deps.DB.DB(); derr == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) (*importer.Importer, error) {
	cfg := deps.Config

	if err := swagger.ValidateSpec(context.Background(), "./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi spec validation failed, swagger UI may be broken", "error", err)
	}

	eventBus := events.NewEventBus(deps.Logger)
	registerAuditSubscribers(eventBus, deps.Logger)

	tokenGen := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo.NewRepository(deps.DB), tokenGen, cfg.Security.BCryptCost, deps.Logger)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(userRepo.NewRepository(deps.DB))
	userHandler := user.NewHandler(userService)

	repo := resourceRepo.NewResourceRepository(deps.DB)
	resourceService := resource.NewService(repo, eventBus, deps.Logger)
	resourceHandler := resource.NewHandler(resourceService)

	lookupService := lookup.NewService(lookupRepo.NewLookupRepository(deps.DB), deps.Logger)
	lookupHandler := lookup.NewHandler(lookupService)

	imp := importer.NewImporter(importer.Config{
		MaxWorkers:     cfg.Import.MaxWorkers,
		JobQueueSize:   cfg.Import.JobQueueSize,
		WorkerPoolSize: cfg.Import.WorkerPoolSize,
	}, repo.BulkCreate, deps.Logger)
	importHandler := importer.NewHandler(imp)

	sqlDB, err := deps.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql.DB: %w", err)
	}

	rest.RegisterAllRoutes(deps.Router, sqlDB, authHandler, userHandler, resourceHandler, lookupHandler, importHandler, deps.Logger)
	return imp, nil
}

// registerAuditSubscribers logs directory mutations for traceability.
func registerAuditSubscribers(bus *events.EventBus, log *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		log.InfoContext(ctx, "audit",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"user_id", internal.UserIDFromContext(ctx),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(resource.EventResourceCreated, audit)
	bus.Subscribe(resource.EventResourceBulkCreated, audit)
	bus.Subscribe(resource.EventResourceBulkUpdated, audit)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: log,
		DB:     db,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Source), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
