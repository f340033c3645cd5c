package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cameronmore/go-apiauth/auth"
	"github.com/cameronmore/go-apiauth/config"
	"github.com/cameronmore/go-apiauth/credentials"
	"github.com/cameronmore/go-apiauth/logging"
	"github.com/cameronmore/go-apiauth/sessions"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
)

// stack is everything serve builds from configuration before the HTTP server.
type stack struct {
	db            *sql.DB
	redis         *redis.Client
	directory     *auth.Directory
	authenticator auth.Authenticator
}

func (s *stack) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func openStore(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, *auth.SQLAuthStore, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connecting to %s database: %w", cfg.Driver, err)
	}

	var store *auth.SQLAuthStore
	switch cfg.Driver {
	case "postgres":
		store, err = auth.NewPostgresStore(ctx, db)
	default:
		store, err = auth.NewSQLiteStore(ctx, db)
	}
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, store, nil
}

// buildStack opens the configured backends and builds the authenticator. Any
// failure here is fatal to serve.
func buildStack(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*stack, error) {
	db, store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	st := &stack{db: db}

	st.directory = auth.NewDirectory(store, credentials.NewHasher(cfg.Auth.BcryptCost))
	deps := auth.Deps{
		Directory: st.directory,
		Cookies: &sessions.CookieCodec{
			Name:   cfg.Auth.SessionName,
			Secret: cfg.Auth.CookieSecret,
			Secure: cfg.Auth.CookieSecure,
		},
		Logger: logger.Logger,
	}

	duration := cfg.SessionDuration()
	switch cfg.Strategy() {
	case auth.StrategySession:
		deps.Memory = sessions.NewMemoryStore()
	case auth.StrategyExpiringSession:
		deps.Expiring = sessions.NewExpiringStore(duration)
	case auth.StrategyPersistedSession:
		var records sessions.RecordStore = store
		if cfg.Auth.SessionBackend == "redis" {
			st.redis = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := st.redis.Ping(ctx).Err(); err != nil {
				st.Close()
				return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
			}
			records = sessions.NewRedisRecordStore(st.redis, duration)
		}
		deps.Persisted = sessions.NewPersistedStore(records, duration)
	}

	st.authenticator, err = auth.New(cfg.Strategy(), deps)
	if err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}
