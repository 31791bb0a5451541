package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "hotelbooking/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"hotelbooking/internal/access"
	"hotelbooking/internal/auth"
	"hotelbooking/internal/cache"
	"hotelbooking/internal/config"
	"hotelbooking/internal/events"
	"hotelbooking/internal/handler"
	"hotelbooking/internal/logging"
	"hotelbooking/internal/metrics"
	"hotelbooking/internal/repository"
	"hotelbooking/internal/router"
	"hotelbooking/internal/service"
)

// @title Hotel Booking API
// @version 1.0
// @description Hotel catalog and booking ledger with JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg)

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *logger); err != nil {
		stop()
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// run serves until ctx is done. Every resource it opens is released before it
// returns, including on startup failures.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	resetDB := os.Getenv("RESET_DB") == "true"
	if resetDB {
		logger.Warn().Str("driver", cfg.StoreDriver).Msg("RESET_DB=true detected, dropping existing data")
	}
	store, err := repository.Open(ctx, cfg, resetDB)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error().Err(err).Msg("close store")
		}
	}()

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, hotel cache and token revocation degraded")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		nats, err := events.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return fmt.Errorf("nats init: %w", err)
		}
		publisher = nats
		logger.Info().Str("url", cfg.NATSURL).Msg("publishing booking events")
	}
	defer publisher.Close()

	metrics.Register()

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.RefreshExpiresIn)
	tokenStore := auth.NewTokenStore(cacheClient)
	accessController := access.NewController(jwtService, tokenStore, store.Users)

	// Initialize services
	authService := service.NewAuthService(store.Users, jwtService, tokenStore, logger)
	userService := service.NewUserService(store.Users, accessController)
	hotelService := service.NewHotelService(store.Hotels, cacheClient, logger)
	bookingService := service.NewBookingService(service.BookingDeps{
		Bookings:  store.Bookings,
		Hotels:    store.Hotels,
		Users:     store.Users,
		Access:    accessController,
		Publisher: publisher,
		Logger:    logger,
	})

	e := echo.New()
	router.Register(
		e,
		cfg,
		logger,
		accessController,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewHotelHandler(hotelService),
		handler.NewBookingHandler(bookingService),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      e,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("driver", cfg.StoreDriver).Msg("server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server start: %w", err)
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
