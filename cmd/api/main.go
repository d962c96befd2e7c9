package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/luckyhouse/listing-api/internal/api"
	"github.com/luckyhouse/listing-api/internal/api/middleware"
	"github.com/luckyhouse/listing-api/internal/core/service"
	"github.com/luckyhouse/listing-api/internal/infrastructure/imaging"
	"github.com/luckyhouse/listing-api/internal/infrastructure/security"
	"github.com/luckyhouse/listing-api/internal/pkg/config"
	"github.com/luckyhouse/listing-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "listing-api",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("listing-api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		st.close(closeCtx, log)
	}()

	secret, err := sessionSecret(cfg, log)
	if err != nil {
		return err
	}

	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	normalizer := imaging.New(imaging.Config{
		MaxBytes:     cfg.Image.MaxBytes,
		StartQuality: cfg.Image.StartQuality,
		QualityStep:  cfg.Image.QualityStep,
		MinQuality:   cfg.Image.MinQuality,
		Workers:      cfg.Image.Workers,
	}, logger.Component("imaging"))

	authService := service.NewAuthService(st.users, st.sessions, hasher, st.throttle, service.AuthConfig{
		SessionTTL:       cfg.Session.TTL,
		MaxLoginAttempts: cfg.Login.MaxAttempts,
		LoginWindow:      cfg.Login.Window,
	}, logger.Component("auth"))
	userService := service.NewUserService(st.users, st.listings, hasher, logger.Component("users"))
	listingService := service.NewListingService(st.listings, normalizer, logger.Component("listings"))

	if cfg.Admin.Username != "" {
		created, err := userService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("username", cfg.Admin.Username).Msg("seeded admin account")
		}
	}

	sameSite, _ := config.ParseSameSite(cfg.Session.SameSite)
	cookies := middleware.NewSessionCookies(middleware.NewSessionCodec(secret), middleware.CookieConfig{
		Name:     cfg.Session.CookieName,
		Secure:   cfg.Session.Secure,
		SameSite: sameSite,
	})

	e := api.NewRouter(api.Deps{
		Log:         logger.Component("http"),
		Auth:        authService,
		Users:       userService,
		Listings:    listingService,
		Cookies:     cookies,
		Health:      st.checks,
		CORSOrigins: cfg.CORSOrigins,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("listing-api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
