package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "campusevents/docs"
	"campusevents/internal/adapters/auth"
	"campusevents/internal/adapters/email"
	"campusevents/internal/adapters/session"
	delivery "campusevents/internal/delivery/http"
	"campusevents/internal/delivery/http/controllers"
	"campusevents/internal/metrics"
	"campusevents/internal/repository/sqlstore"
	"campusevents/internal/services"
)

func ServeCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, logger, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	if migrate {
		if err := db.Migrate(ctx); err != nil {
			return err
		}
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.AWSRegion,
			AccessKeyID:        cfg.Email.AWSAccessKeyID,
			SecretAccessKey:    cfg.Email.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return err
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return err
	}

	userRepo := sqlstore.NewUserRepository(db)
	eventRepo := sqlstore.NewEventRepository(db)
	registrationRepo := sqlstore.NewRegistrationRepository(db)

	m := metrics.New()
	sessions := session.NewStore(rdb, cfg.SessionTTL)
	tokens := auth.NewJWTSessionTokens(cfg.SessionSecret)

	userService := services.NewUserService(userRepo, auth.NewBcryptHasher(cfg.BcryptCost), logger)
	eventService := services.NewEventService(eventRepo, registrationRepo, cfg.ContextTimeout)
	registrationService := services.NewRegistrationService(
		registrationRepo,
		registrationRepo,
		userRepo,
		eventRepo,
		services.NewEmailService(mailer, renderer),
		m,
		logger,
	)

	mux := delivery.NewRouter(delivery.Controllers{
		Users:         controllers.NewUserController(logger, userService, sessions, tokens, sessions.TTL(), cfg.IsProduction()),
		Events:        controllers.NewEventController(logger, eventService, registrationService),
		Registrations: controllers.NewRegistrationController(logger, registrationService),
		Admin:         controllers.NewAdminController(logger, userService, eventService, registrationService),
	}, m, logger)
	handler := delivery.NewHandler(mux, m, logger, cfg.CORSAllowedOrigins, delivery.SessionDeps{
		Store:    sessions,
		Verifier: tokens,
		Users:    userService,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Debug("Received shutdown signal, initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server shutdown completed successfully")
	return nil
}
