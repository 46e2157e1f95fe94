package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/medicore-api/internal/handlers"
	"github.com/harentsoaR/medicore-api/internal/metrics"
	"github.com/harentsoaR/medicore-api/internal/services"
	"github.com/harentsoaR/medicore-api/internal/storage"
	"github.com/harentsoaR/medicore-api/internal/utils"
)

const shutdownTimeout = 10 * time.Second

func runServer(ctx context.Context) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.db.Close(context.Background()); err != nil {
			e.log.WithError(err).Warn("Closing MongoDB connection failed")
		}
	}()
	cfg, log := e.cfg, e.log

	avatars, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		UseSSL:    cfg.MinioUseSSL,
		Bucket:    cfg.MinioBucket,
		PublicURL: cfg.MinioPublicURL,
	}, log)
	if err != nil {
		return err
	}
	if err := avatars.EnsureBucket(ctx); err != nil {
		return err
	}

	tokens, err := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpires)
	if err != nil {
		return err
	}

	m := metrics.New()
	users := e.db.Users()
	accounts := services.NewAccountService(users, avatars, utils.NewPasswordHasher(cfg.BcryptCost), m, log)
	notifier := services.NewNotificationService(cfg.TextbeltAPIKey, "", log)

	if cfg.DefaultAdminEmail != "" && cfg.DefaultAdminPassword != "" {
		if err := seedAdmin(ctx, accounts, defaultAdmin(cfg.DefaultAdminEmail, cfg.DefaultAdminPassword), log); err != nil {
			return err
		}
	}

	h := &handlers.Handler{
		Accounts:     accounts,
		Appointments: services.NewAppointmentService(users, e.db.Appointments(), notifier, m, log),
		Messages:     services.NewMessageService(e.db.Messages(), log),
		Tokens:       tokens,
		Cookies: handlers.CookieConfig{
			Secure:   cfg.CookieSecure,
			SameSite: cfg.CookieSameSite,
			Domain:   cfg.CookieDomain,
		},
		Health: e.db,
		Log:    log,
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(h, handlers.RouterConfig{
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     m,
		Users:       users,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-quit.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
