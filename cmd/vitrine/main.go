package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vitrine-cms/vitrine/internal/activity"
	"github.com/vitrine-cms/vitrine/internal/analytics"
	"github.com/vitrine-cms/vitrine/internal/app"
	"github.com/vitrine-cms/vitrine/internal/auth"
	"github.com/vitrine-cms/vitrine/internal/authz"
	"github.com/vitrine-cms/vitrine/internal/contact"
	"github.com/vitrine-cms/vitrine/internal/events"
	"github.com/vitrine-cms/vitrine/internal/gate"
	"github.com/vitrine-cms/vitrine/internal/media"
	"github.com/vitrine-cms/vitrine/internal/messages"
	"github.com/vitrine-cms/vitrine/internal/newsletter"
	"github.com/vitrine-cms/vitrine/internal/observability"
	"github.com/vitrine-cms/vitrine/internal/partners"
	"github.com/vitrine-cms/vitrine/internal/pixels"
	"github.com/vitrine-cms/vitrine/internal/platform/cache"
	"github.com/vitrine-cms/vitrine/internal/platform/db"
	"github.com/vitrine-cms/vitrine/internal/shared"
	"github.com/vitrine-cms/vitrine/internal/team"
	"github.com/vitrine-cms/vitrine/internal/testimonials"
	"github.com/vitrine-cms/vitrine/internal/users"
	"github.com/vitrine-cms/vitrine/internal/view"
	"github.com/vitrine-cms/vitrine/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "vitrine_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	templates.SetIdlePolicy(view.IdlePolicy{LockAfter: cfg.SessionIdleLock, MaxIdle: cfg.SessionMaxIdle})

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool, logger)

	mailClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init task client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mailClient.Close(); err != nil {
			logger.Warn("task client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, auditLogger)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager)

	resolver := auth.DirectoryResolver{Repo: authRepo}
	guard := authz.Middleware{Resolver: resolver, Logger: logger, Denials: metrics}
	pageGate := gate.Gate{Resolver: resolver, Logger: logger}

	usersService := users.NewService(users.NewRepository(pool), auditLogger)
	usersHandler := users.NewHandler(logger, usersService, guard)

	teamService := team.NewService(team.NewRepository(pool), auditLogger)
	teamHandler := team.NewHandler(logger, teamService, guard)

	testimonialsService := testimonials.NewService(testimonials.NewRepository(pool), auditLogger)
	testimonialsHandler := testimonials.NewHandler(logger, testimonialsService, guard)

	partnersService := partners.NewService(partners.NewRepository(pool), auditLogger)
	partnersHandler := partners.NewHandler(logger, partnersService, guard)

	mediaService := media.NewService(media.NewRepository(pool), auditLogger)
	mediaHandler := media.NewHandler(logger, mediaService, guard)

	contactService := contact.NewService(contact.NewRepository(pool), auditLogger)
	contactHandler := contact.NewHandler(logger, contactService, guard)

	messagesService := messages.NewService(messages.NewRepository(pool), mailClient, auditLogger, cfg.ContactNotifyTo, logger)
	messagesHandler := messages.NewHandler(logger, messagesService, guard)

	pixelsService := pixels.NewService(pixels.NewRepository(pool), auditLogger)
	pixelsHandler := pixels.NewHandler(logger, pixelsService, guard)

	eventsService := events.NewService(events.NewRepository(pool), mailClient, auditLogger, logger)
	eventsHandler := events.NewHandler(logger, eventsService, guard, events.DefaultLimiter())

	newsletterService := newsletter.NewService(newsletter.NewRepository(pool), mailClient, logger)
	newsletterHandler := newsletter.NewHandler(logger, newsletterService, guard)

	analyticsService := analytics.NewService(analytics.NewRepository(pool), analytics.NewCache(redisClient, 10*time.Minute), logger)
	analyticsHandler := analytics.NewHandler(logger, analyticsService, guard)

	activityService := activity.NewService(activity.NewRepository(pool))
	activityHandler := activity.NewHandler(logger, activityService, guard)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Templates:           templates,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		Guard:               guard,
		Gate:                pageGate,
		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		TeamHandler:         teamHandler,
		TestimonialsHandler: testimonialsHandler,
		PartnersHandler:     partnersHandler,
		MediaHandler:        mediaHandler,
		ContactHandler:      contactHandler,
		MessagesHandler:     messagesHandler,
		PixelsHandler:       pixelsHandler,
		EventsHandler:       eventsHandler,
		NewsletterHandler:   newsletterHandler,
		AnalyticsHandler:    analyticsHandler,
		ActivityHandler:     activityHandler,
		Analytics:           analyticsService,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
