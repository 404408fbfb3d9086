package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-employee-api/internal/config"
	"go-employee-api/internal/database"
	"go-employee-api/internal/handler"
	"go-employee-api/internal/middleware"
	"go-employee-api/internal/repository"
	"go-employee-api/internal/router"
	"go-employee-api/internal/service"
	"go-employee-api/internal/storage"
	"go-employee-api/internal/token"
	"go-employee-api/internal/upload"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

type stores struct {
	users     repository.CredentialStore
	employees repository.EmployeeStore
	health    interface{ Health(ctx context.Context) error }
	close     func()
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pictureStore, err := openPictureStore(ctx, cfg)
	if err != nil {
		db.close()
		return nil, err
	}

	pictureService, err := service.NewPictureService(pictureStore, cfg.ThumbnailRoot)
	if err != nil {
		db.close()
		return nil, fmt.Errorf("failed to initialize picture service: %w", err)
	}

	signer := token.NewJWTSigner(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(db.users, signer)
	userService := service.NewUserService(db.users, cfg.BcryptCost)
	employeeService := service.NewEmployeeService(db.employees, pictureService)
	uploads := upload.NewHandler(pictureStore, cfg.MaxUploadSize)

	appRouter := router.New(
		cfg,
		middleware.NewAuthMiddleware(authService),
		handler.NewUserHandler(userService, authService),
		handler.NewEmployeeHandler(employeeService, uploads),
		handler.NewPictureHandler(pictureService),
		handler.NewSystemHandler(db.health, cfg.APIPrefix),
		handler.NewDocsHandler(cfg.DocsPath),
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: []func(){db.close},
	}, nil
}

// Handler exposes the routed handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

func (a *App) Close() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}

func openStores(ctx context.Context, cfg *config.Config) (stores, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		return stores{
			users:     repository.NewGormUserRepository(db.Gorm),
			employees: repository.NewGormEmployeeRepository(db.Gorm),
			health:    db,
			close:     db.Close,
		}, nil
	default:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return stores{}, fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return stores{}, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		return stores{
			users:     repository.NewUserRepository(db.Pool),
			employees: repository.NewEmployeeRepository(db.Pool),
			health:    db,
			close:     db.Close,
		}, nil
	}
}

func openPictureStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.UploadBackend {
	case config.UploadBackendS3:
		store, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			Endpoint:     cfg.S3Endpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			Prefix:       cfg.S3Prefix,
			UsePathStyle: cfg.S3UsePathStyle,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		slog.Info("picture storage ready", "backend", "s3", "bucket", cfg.S3Bucket)
		return store, nil
	default:
		store, err := storage.NewLocal(cfg.UploadDir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		slog.Info("picture storage ready", "backend", "local", "root", store.RootAbs())
		return store, nil
	}
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-serveErr:
		a.Close()
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.Close()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
