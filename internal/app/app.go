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

	"go-repair-shop/internal/config"
	"go-repair-shop/internal/database"
	"go-repair-shop/internal/event"
	"go-repair-shop/internal/handler"
	"go-repair-shop/internal/middleware"
	"go-repair-shop/internal/repository"
	"go-repair-shop/internal/router"
	"go-repair-shop/internal/service"
	"go-repair-shop/internal/websocket"
)

const tokenSweepInterval = time.Hour

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New(cfg *config.Config) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, database.PoolOptions{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		cancel()
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	appRouter, err := Routes(ctx, cfg, db)
	if err != nil {
		cancel()
		db.Close()
		return nil, err
	}

	go sweepRefreshTokens(ctx, repository.NewTokenRepository(db.Pool), tokenSweepInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			cancel,
			db.Close,
		},
	}, nil
}

// Routes wires repositories, services and handlers over db and seeds the
// default admin. Background goroutines stop when ctx is cancelled.
func Routes(ctx context.Context, cfg *config.Config, db *database.DB) (http.Handler, error) {
	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	workOrderRepo := repository.NewWorkOrderRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus()
	hub := websocket.NewHub(bus)
	go hub.Run(ctx)

	authService := service.NewAuthService(userRepo, tokenRepo, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err := authService.SeedAdmin(ctx, cfg.DefaultAdminUser, cfg.DefaultAdminPass); err != nil {
		return nil, fmt.Errorf("failed to seed admin user: %w", err)
	}

	clientService := service.NewClientService(clientRepo, bus)
	vehicleService := service.NewVehicleService(vehicleRepo, clientRepo, bus)
	workOrderService := service.NewWorkOrderService(workOrderRepo, vehicleRepo, clientRepo, bus)
	userService := service.NewUserService(userRepo, tokenRepo, bus)

	return router.New(cfg, middleware.NewAuthMiddleware(authService), router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		Clients:        handler.NewResourceHandler(clientService),
		ClientVehicles: handler.NewClientVehiclesHandler(vehicleService),
		Vehicles:       handler.NewResourceHandler(vehicleService),
		WorkOrders:     handler.NewResourceHandler(workOrderService),
		Users:          handler.NewResourceHandler(userService),
		Events:         websocket.NewHandler(ctx, hub, cfg.CORSOrigins),
		Health:         handler.Health(db),
	}), nil
}

func sweepRefreshTokens(ctx context.Context, tokens *repository.TokenRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := tokens.CleanExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("refresh token sweep failed", "error", err)
				}
				continue
			}
			if removed > 0 {
				slog.Debug("expired refresh tokens removed", "count", removed)
			}
		}
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}
