package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adapthttp "tasklist/internal/adapter/http"
	"tasklist/internal/adapter/memory"
	"tasklist/internal/adapter/mongodb"
	"tasklist/internal/adapter/postgres"
	"tasklist/internal/adapter/redis"
	"tasklist/internal/app"
	"tasklist/internal/config"
	"tasklist/internal/domain"
	"tasklist/internal/logging"

	"go.uber.org/zap"
)

// stores bundles the repositories selected by STORE_DRIVER.
type stores struct {
	users    domain.UserRepository
	tasks    domain.TaskRepository
	sessions domain.SessionRepository
	health   []domain.Pinger
	closers  []func() error
}

func (s *stores) Close(log *zap.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("exit", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close(log)

	authSvc := app.NewAuthService(st.users, st.sessions, cfg.SessionTTL)
	taskSvc := app.NewTaskService(st.tasks)

	if err := authSvc.PurgeExpired(ctx); err != nil {
		log.Warn("purge expired sessions", zap.Error(err))
	}

	srv := adapthttp.New(authSvc, taskSvc, log).
		WithHealthCheck(st.health...).
		WithSecureCookies(cfg.CookieSecure)

	if cfg.OIDC.Enabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return fmt.Errorf("oidc discovery: %w", err)
		}
		srv.WithOIDC(oidcCfg)
		log.Info("sso enabled", zap.String("issuer", cfg.OIDC.Issuer))
	}

	httpServer := adapthttp.NewHTTPServer(cfg.Addr, srv.Handler())

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	st := &stores{}

	switch cfg.StoreDriver {
	case config.DriverMongo:
		db, err := mongodb.Open(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("mongo open: %w", err)
		}
		st.users, st.tasks, st.sessions = db, mongodb.NewTaskRepo(db), mongodb.NewSessionRepo(db)
		st.health = append(st.health, db)
		st.closers = append(st.closers, db.Close)
	case config.DriverPostgres:
		db, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres open: %w", err)
		}
		st.users, st.tasks, st.sessions = db, postgres.NewTaskRepo(db), postgres.NewSessionRepo(db)
		st.health = append(st.health, db)
		st.closers = append(st.closers, db.Close)
	case config.DriverMemory:
		log.Warn("using in-memory store; data is lost on restart")
		db := memory.New()
		st.users, st.tasks, st.sessions = db, db.NewTaskRepo(), db.NewSessionRepo()
		st.health = append(st.health, db)
		st.closers = append(st.closers, db.Close)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	if cfg.RedisAddr != "" {
		sessions, err := redis.Open(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			st.Close(log)
			return nil, fmt.Errorf("redis open: %w", err)
		}
		st.sessions = sessions
		st.health = append(st.health, sessions)
		st.closers = append(st.closers, sessions.Close)
		log.Info("sessions stored in redis", zap.String("addr", cfg.RedisAddr))
	}

	log.Info("store ready", zap.String("driver", cfg.StoreDriver))
	return st, nil
}
