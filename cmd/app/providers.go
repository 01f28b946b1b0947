package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/heliowatt/heliowatt/internal/domain/auth"
	"github.com/heliowatt/heliowatt/internal/domain/export"
	"github.com/heliowatt/heliowatt/internal/domain/session"
	"github.com/heliowatt/heliowatt/internal/infra/config"
	"github.com/heliowatt/heliowatt/internal/infra/exportstore"
	"github.com/heliowatt/heliowatt/internal/infra/geocode/nominatim"
	"github.com/heliowatt/heliowatt/internal/infra/sessionstore"
	"github.com/heliowatt/heliowatt/internal/infra/solar/pvwatts"
	"github.com/heliowatt/heliowatt/internal/infra/userrepo"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:          cfg.Auth.Secret,
		TokenTTL:        cfg.Auth.TokenTTL,
		RefreshTokenTTL: cfg.Auth.RefreshTokenTTL,
		Google: auth.GoogleConfig{
			ClientID:             cfg.Auth.Google.ClientID,
			ClientSecret:         cfg.Auth.Google.ClientSecret,
			RedirectURL:          cfg.Auth.Google.RedirectURL,
			TokenEncryptionKey:   cfg.Auth.Google.TokenEncryptionKey,
			PostLoginRedirectURL: cfg.Auth.Google.PostLoginRedirectURL,
		},
	}
}

func provideAuthRepository(cfg *config.Config, logger *slog.Logger) auth.Repository {
	fallback := userrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Auth.Postgres.DSN)
	if dsn == "" {
		logger.Info("auth postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Auth.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Auth.Postgres.MaxConns
	}
	if cfg.Auth.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Auth.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("auth postgres repository enabled")
	return userrepo.NewPostgresRepository(pool)
}

func provideGeocodeClient(cfg *config.Config) *nominatim.Client {
	return nominatim.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent)
}

func provideSolarClient(cfg *config.Config) *pvwatts.Client {
	return pvwatts.NewClient(cfg.Solar.BaseURL, cfg.Solar.APIKey)
}

func provideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{TTL: cfg.Session.TTL}
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) session.Store {
	if cfg.Session.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return sessionstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return sessionstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
		} else {
			logger.Info("session valkey store enabled", "addr", cfg.Session.Valkey.Addr)
			return sessionstore.NewValkeyStore(client, "session")
		}
	}
	return sessionstore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Session.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Session.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Session.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideExportStorage(cfg *config.Config, logger *slog.Logger) export.ObjectStorage {
	if !cfg.Exports.Enabled {
		logger.Info("export archive disabled")
		return nil
	}
	if strings.TrimSpace(cfg.Exports.S3.Endpoint) == "" {
		logger.Info("export s3 endpoint not set, using memory storage")
		return exportstore.NewMemoryStorage()
	}
	storage, err := exportstore.NewS3Storage(
		cfg.Exports.S3.Endpoint,
		cfg.Exports.S3.AccessKey,
		cfg.Exports.S3.SecretKey,
		cfg.Exports.S3.Bucket,
		cfg.Exports.S3.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize s3 storage, using memory storage", "error", err)
		return exportstore.NewMemoryStorage()
	}
	logger.Info("export s3 storage enabled", "bucket", cfg.Exports.S3.Bucket)
	return storage
}
