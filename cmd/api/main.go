package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	activityHttp "chato-dashboard/internal/activity/adapters/http/fiber"
	activityRepoPg "chato-dashboard/internal/activity/adapters/postgres"
	activityUsecase "chato-dashboard/internal/activity/core/usecase"

	appsHttp "chato-dashboard/internal/apps/adapters/http/fiber"
	appsRest "chato-dashboard/internal/apps/adapters/rest"
	appsUsecase "chato-dashboard/internal/apps/core/usecase"

	authHttp "chato-dashboard/internal/auth/adapters/http/fiber"
	authRest "chato-dashboard/internal/auth/adapters/rest"
	authUsecase "chato-dashboard/internal/auth/core/usecase"

	convHttp "chato-dashboard/internal/conversations/adapters/http/fiber"
	convUsecase "chato-dashboard/internal/conversations/core/usecase"

	dashboardHttp "chato-dashboard/internal/dashboard/adapters/http/fiber"
	dashboardRest "chato-dashboard/internal/dashboard/adapters/rest"
	dashboardUsecase "chato-dashboard/internal/dashboard/core/usecase"

	"chato-dashboard/internal/identity/adapters/anonjwt"
	identityUsecase "chato-dashboard/internal/identity/core/usecase"

	"chato-dashboard/internal/realtime/adapters/memory"
	rtRedis "chato-dashboard/internal/realtime/adapters/redis"
	rtPorts "chato-dashboard/internal/realtime/core/ports"
	rtUsecase "chato-dashboard/internal/realtime/core/usecase"

	"chato-dashboard/internal/config"
	"chato-dashboard/internal/platform/bearer"
	"chato-dashboard/internal/platform/logger"
	"chato-dashboard/internal/platform/restclient"
	"chato-dashboard/internal/platform/wspush"

	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "chato-dashboard/docs"
)

// @title Chato Dashboard API
// @version 1.0
// @description Backend-for-frontend of the Chato owner dashboard: apps, live sessions and chat.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	root := logger.New(cfg.Log.Level, cfg.Log.Format)
	log := logger.Component(root, "api")

	// Realtime store
	store, closeStore := openStore(cfg, log)
	defer closeStore()

	// Identity
	bootstrapper := identityUsecase.NewBootstrapper(
		anonjwt.NewIssuer(cfg.Identity.Secret, cfg.Identity.TTL),
		logger.Component(root, "identity"),
	)
	if _, err := bootstrapper.EnsureReady(context.Background()); err != nil {
		log.WithError(err).Error("initial identity bootstrap failed")
	}

	// Realtime + conversations
	subscriber := rtUsecase.NewSubscriber(store, bootstrapper, logger.Component(root, "realtime"))
	aggregator := convUsecase.NewAggregator(subscriber, convUsecase.SystemClock(), cfg.Realtime.Debounce, logger.Component(root, "aggregator"))
	stream := convUsecase.NewMessageStream(subscriber)

	// Backend clients
	api := restclient.New(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	appsClient := appsRest.NewAppsClient(api)
	authClient := authRest.NewAuthClient(api)
	dashboardClient := dashboardRest.NewDashboardClient(api)

	chat := convUsecase.NewChat(stream, dashboardClient, convUsecase.SystemClock(), logger.Component(root, "chat"))

	// Activity archive (optional)
	var shared []appsUsecase.SnapshotSink
	var (
		db       *sql.DB
		recorder *activityUsecase.Recorder
		getActUC *activityUsecase.GetActivityUseCase
	)
	if cfg.ArchiveEnabled() {
		db, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.WithError(err).Fatal("failed to open postgres")
		}
		defer db.Close()

		db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err := db.Ping(); err != nil {
			log.WithError(err).Fatal("failed to ping postgres")
		}

		activityRepository := activityRepoPg.NewActivityRepository(activityRepoPg.NewSQLDB(db))
		if err := activityRepository.EnsureSchema(context.Background()); err != nil {
			log.WithError(err).Fatal("failed to create activity schema")
		}

		recorder = activityUsecase.NewRecorder(activityRepository, cfg.Postgres.QueueSize, time.Now, logger.Component(root, "activity"))
		recorder.Start()
		shared = append(shared, recorder)
		getActUC = activityUsecase.NewGetActivityUseCase(activityRepository, time.Local)
	}

	// One workspace per owner token
	registry := appsUsecase.NewRegistry(appsClient, aggregator, bootstrapper, time.Now, logger.Component(root, "apps"), shared...)
	stopJanitor := sweepIdle(registry, cfg.Server.WorkspaceIdle)
	defer stopJanitor()

	dashboardUC := dashboardUsecase.NewDashboardUseCase(dashboardClient, time.Now, logger.Component(root, "dashboard"))
	authUC := authUsecase.NewAuthUseCase(authClient, bootstrapper, logger.Component(root, "auth"))

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	httpLog := logger.Component(root, "http")
	appsHandler := appsHttp.NewAppsHandler(func(token string) appsHttp.AppsUseCase {
		return registry.For(token)
	}, httpLog)
	authHandler := authHttp.NewAuthHandler(authUC, httpLog)
	dashboardHandler := dashboardHttp.NewDashboardHandler(dashboardUC, httpLog)
	convHandler := convHttp.NewConversationHandler(chat, func(token string) convHttp.Owner {
		return registry.For(token)
	}, httpLog).
		WithPreviews(func(apiKey string, onChange func()) convHttp.PreviewSource {
			return convUsecase.NewPreviews(stream, apiKey, logger.Component(root, "previews"), onChange)
		})

	// auth endpoints
	app.Post("/auth/register", authHandler.Register)
	app.Post("/auth/login", authHandler.Login)
	app.Post("/auth/logout", releaseWorkspace(registry), authHandler.Logout)

	// apps + sessions endpoints
	apps := app.Group("/apps", bearer.Require())
	apps.Get("/", appsHandler.ListApps)
	apps.Post("/", appsHandler.CreateApp)
	apps.Post("/retry", appsHandler.RetryApps)
	apps.Delete("/:apiKey", appsHandler.DeleteApp)
	apps.Patch("/:apiKey/settings", appsHandler.UpdateSettings)
	apps.Get("/:apiKey/config", appsHandler.GetConfig)
	apps.Get("/:apiKey/sessions", convHandler.RequireApp, convHandler.ListSessions)
	apps.Post("/:apiKey/sessions/:sessionId/messages", convHandler.RequireApp, requireIdentity(bootstrapper), convHandler.SendMessage)
	apps.Post("/:apiKey/sessions/:sessionId/read", convHandler.RequireApp, convHandler.MarkRead)

	// live pushes
	ws := app.Group("/ws", wspush.RequireUpgrade, requireIdentity(bootstrapper))
	ws.Get("/apps", appsHandler.AppsSocket())
	ws.Get("/apps/:apiKey/sessions", convHandler.RequireApp, convHandler.SessionsSocket())
	ws.Get("/apps/:apiKey/sessions/:sessionId", convHandler.RequireApp, convHandler.ThreadSocket())

	// dashboard endpoints
	dash := app.Group("/dashboard", bearer.Require())
	dash.Get("/shifts", dashboardHandler.ListShifts)
	dash.Post("/shifts", dashboardHandler.CreateShift)
	dash.Get("/reminders", dashboardHandler.ListReminders)
	dash.Post("/reminders", dashboardHandler.CreateReminder)
	dash.Delete("/reminders/:id", dashboardHandler.DeleteReminder)

	// activity endpoint
	if getActUC != nil {
		activityHandler := activityHttp.NewActivityHandler(getActUC, func(ctx context.Context, token string) ([]string, error) {
			return registry.For(token).Keys(ctx, token)
		}, httpLog)
		app.Get("/activity", bearer.Require(), activityHandler.GetActivity)
	}

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":   "ok",
			"tracked":  registry.Tracked(),
			"identity": bootstrapper.Current() != nil,
			"archive":  recorder != nil,
		})
	})

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.Server.Addr); err != nil {
			log.WithError(err).Warn("fiber stopped")
		}
	}()

	log.WithField("addr", cfg.Server.Addr).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.WithError(err).Error("fiber shutdown error")
	}

	registry.Close()

	if recorder != nil {
		if err := recorder.Stop(ctx); err != nil {
			log.WithError(err).Error("activity recorder did not drain")
		}
	}

	log.Info("server exiting")
}

// openStore selects the realtime store driver.
func openStore(cfg *config.Config, log *logrus.Entry) (rtPorts.StorePort, func()) {
	if cfg.Realtime.Driver != "redis" {
		log.Warn("using in-memory realtime store")
		return memory.NewStore(), func() {}
	}

	s, err := rtRedis.NewStore(cfg.Realtime.RedisURL, cfg.Realtime.KeyPrefix)
	if err != nil {
		log.WithError(err).Fatal("failed to open redis store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		log.WithError(err).Fatal("failed to ping redis")
	}

	return s, func() {
		if err := s.Close(); err != nil {
			log.WithError(err).Warn("redis close error")
		}
	}
}

// requireIdentity holds realtime routes until an identity is available.
func requireIdentity(b *identityUsecase.Bootstrapper) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := b.EnsureReady(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error":   "identity_unavailable",
				"message": err.Error(),
			})
		}
		return c.Next()
	}
}

// releaseWorkspace drops the caller's workspace on logout.
func releaseWorkspace(r *appsUsecase.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearer.FromRequest(c); token != "" {
			r.Release(token)
		}
		return c.Next()
	}
}

// sweepIdle evicts idle workspaces until the returned stop is called.
func sweepIdle(r *appsUsecase.Registry, maxIdle time.Duration) (stop func()) {
	ticker := time.NewTicker(maxIdle / 2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				r.Sweep(maxIdle)
			case <-done:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
