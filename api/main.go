package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jimiolaniyan/goaccounts/config"
	"github.com/jimiolaniyan/goaccounts/users"
)

func main() {
	boot := zap.Must(zap.NewProduction())

	cfg, err := config.Load(os.Args[1:], ".env")
	if err != nil {
		boot.Fatal("failed to load config", zap.Error(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		boot.Fatal("failed to build logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	accounts, ping, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open record store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	svc := users.NewService(
		accounts,
		users.NewBcryptHasher(cfg.BcryptCost),
		users.NewJWTIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL),
		users.NewLogEvents(logger),
		logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/health", healthHandler(ping))
	mux.Handle("/", users.MakeHandler(svc, logger))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		logger.Info("shutting down server")
	case err := <-errCh:
		logger.Error("listen", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func openStore(ctx context.Context, cfg *config.Config) (users.Repository, func(context.Context) error, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		if err := users.MigratePostgres(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return users.NewPostgresAccountRepository(pool), pool.Ping, pool.Close, nil

	case config.StoreMemory:
		noop := func(context.Context) error { return nil }
		return users.NewAccountRepository(), noop, func() {}, nil

	default:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, nil, err
		}
		disconnect := func() { _ = client.Disconnect(context.Background()) }
		if err := client.Ping(ctx, nil); err != nil {
			disconnect()
			return nil, nil, nil, err
		}

		c := client.Database(cfg.MongoDatabase).Collection("users")
		if err := users.EnsureMongoIndexes(ctx, c); err != nil {
			disconnect()
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return users.NewMongoAccountRepository(c), ping, disconnect, nil
	}
}

func healthHandler(ping func(context.Context) error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"error","store":"unhealthy"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok","store":"healthy"}`))
	})
}
