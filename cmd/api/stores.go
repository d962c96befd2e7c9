package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/luckyhouse/listing-api/internal/api/handler"
	"github.com/luckyhouse/listing-api/internal/core/ports"
	"github.com/luckyhouse/listing-api/internal/infrastructure/db/memory"
	mongostore "github.com/luckyhouse/listing-api/internal/infrastructure/db/mongo"
	redisstore "github.com/luckyhouse/listing-api/internal/infrastructure/db/redis"
	"github.com/luckyhouse/listing-api/internal/infrastructure/db/sqlstore"
	"github.com/luckyhouse/listing-api/internal/pkg/config"
)

// stores bundles the persistence adapters selected by configuration.
type stores struct {
	users    ports.UserRepository
	listings ports.ListingRepository
	sessions ports.SessionStore
	throttle ports.LoginThrottle
	checks   map[string]handler.Checker
	closers  []func(context.Context) error
}

func (s *stores) close(ctx context.Context, log zerolog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	s := &stores{checks: map[string]handler.Checker{}}

	if err := openRecordStores(ctx, cfg, s); err != nil {
		s.close(ctx, log)
		return nil, err
	}
	if err := openSessionStores(ctx, cfg, s); err != nil {
		s.close(ctx, log)
		return nil, err
	}

	log.Info().
		Str("store_backend", cfg.StoreBackend).
		Str("session_backend", cfg.SessionBackend).
		Msg("stores ready")
	return s, nil
}

func openRecordStores(ctx context.Context, cfg *config.Config, s *stores) error {
	switch cfg.StoreBackend {
	case config.StoreMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		s.closers = append(s.closers, client.Disconnect)

		users := mongostore.NewUserRepository(db)
		listings := mongostore.NewListingRepository(db)
		if err := users.EnsureIndexes(ctx); err != nil {
			return err
		}
		if err := listings.EnsureIndexes(ctx); err != nil {
			return err
		}
		s.users, s.listings = users, listings
		s.checks["mongodb"] = func(ctx context.Context) error { return mongostore.Ping(ctx, db) }

	case config.StorePostgres, config.StoreSQLite:
		dialect := sqlstore.Postgres
		if cfg.StoreBackend == config.StoreSQLite {
			dialect = sqlstore.SQLite
		}
		db, err := sqlstore.Open(ctx, sqlstore.Config{Dialect: dialect, DSN: cfg.SQL.DSN})
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func(context.Context) error { return db.Close() })

		s.users = sqlstore.NewUserRepository(db)
		s.listings = sqlstore.NewListingRepository(db)
		s.checks[cfg.StoreBackend] = db.Ping

	case config.StoreMemory:
		s.users = memory.NewUserRepository()
		s.listings = memory.NewListingRepository()

	default:
		return fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	return nil
}

func openSessionStores(ctx context.Context, cfg *config.Config, s *stores) error {
	switch cfg.SessionBackend {
	case config.SessionRedis:
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func(context.Context) error { return client.Close() })

		s.sessions = redisstore.NewSessionStore(client)
		s.throttle = redisstore.NewLoginThrottle(client)
		s.checks["redis"] = func(ctx context.Context) error { return redisstore.Ping(ctx, client, 2*time.Second) }

	case config.SessionMemory:
		s.sessions = memory.NewSessionStore()
		s.throttle = memory.NewLoginThrottle()

	default:
		return fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
	return nil
}

// sessionSecret returns the configured secret, or a random one outside
// production. A random secret invalidates cookies on every restart.
func sessionSecret(cfg *config.Config, log zerolog.Logger) (string, error) {
	if cfg.Session.Secret != "" {
		return cfg.Session.Secret, nil
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	log.Warn().Msg("SESSION_SECRET not set, using a random secret; sessions will not survive a restart")
	return base64.RawStdEncoding.EncodeToString(b), nil
}
