package main

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

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/sumire/strava-bridge/internal/config"
	"github.com/sumire/strava-bridge/internal/handler"
	"github.com/sumire/strava-bridge/internal/repository"
	"github.com/sumire/strava-bridge/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.SetDefault(newLogger(cfg.LogLevel))

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	tokenStore, closeStore, err := newTokenStore(cfg, db)
	if err != nil {
		return err
	}
	defer closeStore()

	issuer, err := newTokenIssuer(cfg)
	if err != nil {
		return err
	}

	strava := service.NewStravaClient(service.StravaConfig{
		ClientID:     cfg.StravaClientID,
		ClientSecret: cfg.StravaClientSecret,
		TokenURL:     cfg.StravaTokenURL(),
		APIURL:       cfg.StravaAPIURL,
	}, &http.Client{Timeout: cfg.UpstreamTimeout})

	authSvc := service.NewAuthService(
		strava,
		strava,
		tokenStore,
		repository.NewUserRepository(db),
		issuer,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler.NewRouter(authSvc, cfg.AllowedOrigins),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "token_store", cfg.TokenStore)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newTokenStore(cfg config.Config, db *sqlx.DB) (service.TokenStore, func(), error) {
	if cfg.TokenStore != config.TokenStoreRedis {
		return repository.NewTokenRepository(db), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	slog.Info("redis connected", "addr", cfg.RedisAddr)

	return repository.NewRedisTokenStore(client), func() { client.Close() }, nil
}

func newTokenIssuer(cfg config.Config) (*service.TokenIssuer, error) {
	issuerCfg := service.IssuerConfig{
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
		TTL:      cfg.TokenTTL,
	}

	if cfg.SigningKeyFile == "" {
		return service.NewHMACTokenIssuer([]byte(cfg.JWTSecret), issuerCfg), nil
	}

	pemBytes, err := os.ReadFile(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}
	return service.NewRSATokenIssuerFromPEM(pemBytes, issuerCfg)
}
