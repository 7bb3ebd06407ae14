package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AnemiB/SipStop/internal/cache"
	"github.com/AnemiB/SipStop/internal/config"
	"github.com/AnemiB/SipStop/internal/encouragement"
	"github.com/AnemiB/SipStop/internal/handlers"
	"github.com/AnemiB/SipStop/internal/handlers/ws"
	"github.com/AnemiB/SipStop/internal/httpx"
	"github.com/AnemiB/SipStop/internal/live"
	"github.com/AnemiB/SipStop/internal/middleware"
	"github.com/AnemiB/SipStop/internal/notifications"
	"github.com/AnemiB/SipStop/internal/repository"
	"github.com/AnemiB/SipStop/internal/scheduler"
	"github.com/AnemiB/SipStop/internal/service"
	"github.com/AnemiB/SipStop/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

func setupLogging(debug bool) {
	if debug {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		logrus.SetLevel(logrus.DebugLevel)
		return
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)
}

func loadSelector(path string) *encouragement.Selector {
	pools := encouragement.DefaultPools()
	if path != "" {
		loaded, err := encouragement.LoadPoolsFile(path)
		if err != nil {
			logrus.WithError(err).WithField("path", path).Warn("failed to load encouragement messages, using built-in pools")
		} else {
			pools = loaded
		}
	}
	return encouragement.NewSelector(pools, encouragement.NewUniformPicker(nil))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	setupLogging(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repository.InitDB(cfg.DSN(), cfg.Debug)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}

	// Redis is optional: caches and presence degrade to no-ops without it.
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := redisCache.Ping(); err != nil {
		logrus.WithError(err).Warn("redis connection failed, running without cache")
		redisCache = nil
	} else {
		logrus.Info("redis cache connected")
	}

	feedCache := cache.NewFeedCache(redisCache)
	userCache := cache.NewUserCache(redisCache)
	onboardingFlags := cache.NewOnboardingFlags(redisCache)

	broker := live.NewBroker()
	if redisCache != nil {
		relay := live.NewRedisRelay(redisCache.Client(), broker)
		broker.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithError(err).Error("live relay stopped")
			}
		}()
	}

	// Journal export storage (best-effort; export returns 503 if missing)
	var exportStore service.ObjectStore
	if cfg.S3Enabled() {
		st, err := storage.NewS3Storage(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			logrus.WithError(err).Warn("failed to initialize S3 storage")
		} else {
			bucketCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := st.EnsureBucket(bucketCtx, cfg.S3Region); err != nil {
				logrus.WithError(err).Warn("failed to ensure export bucket")
			}
			cancel()
			exportStore = st
			logrus.WithField("bucket", cfg.S3Bucket).Info("S3 storage initialized")
		}
	} else {
		logrus.Warn("S3 storage not configured, journal export disabled")
	}

	pushClient := notifications.NewExpoClient(cfg.ExpoPushURL, cfg.ExpoAccessToken)
	hub := ws.NewHub(userCache)
	defer hub.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	drinkRepo := repository.NewDrinkRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	lastViewedRepo := repository.NewNoteLastViewedRepository(db)
	onboardingRepo := repository.NewOnboardingRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, service.AuthConfig{
		Secret:     []byte(cfg.JWTSecret),
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	})
	userService := service.NewUserService(userRepo, refreshTokenRepo)
	drinkService := service.NewDrinkService(drinkRepo, broker)
	noteService := service.NewNoteService(noteRepo, userRepo, feedCache, broker, service.NoteLimits{
		FeedLimit:     cfg.FeedLimit,
		MaxNoteLength: cfg.MaxNoteLength,
	})
	commentService := service.NewCommentService(commentRepo, noteRepo, userRepo, lastViewedRepo, broker, pushClient, hub, cfg.MaxCommentLength)
	activityService := service.NewActivityService(commentRepo, lastViewedRepo)
	encouragementService := service.NewEncouragementService(loadSelector(cfg.EncouragementMessagesFile), drinkRepo, noteRepo, userRepo)
	onboardingService := service.NewOnboardingService(onboardingRepo, onboardingFlags)
	exportService := service.NewExportService(userRepo, drinkRepo, noteRepo, exportStore)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, !cfg.Debug)
	userHandler := handlers.NewUserHandler(userService, exportService)
	drinkHandler := handlers.NewDrinkHandler(drinkService)
	noteHandler := handlers.NewNoteHandler(noteService, commentService)
	activityHandler := handlers.NewActivityHandler(activityService)
	homeHandler := handlers.NewHomeHandler(encouragementService)
	onboardingHandler := handlers.NewOnboardingHandler(onboardingService)
	wsHandler := handlers.NewWebSocketHandler(hub, &ws.Deps{
		Broker:        broker,
		Feed:          noteService,
		Comments:      commentService,
		Activity:      activityService,
		Encouragement: encouragementService,
	}, cfg.Debug)

	ticks, err := scheduler.New(cfg.TickSchedule, encouragementService, wsHandler.GetHub())
	if err != nil {
		logrus.WithError(err).Fatal("invalid tick schedule")
	}
	ticks.Start()

	app := fiber.New(fiber.Config{
		AppName:   "SipStop Backend",
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Sip-CSRF, X-Device-ID",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: len(cfg.AllowedOrigins) > 0,
	}))

	csrf := middleware.CSRFRequired(cfg.CSRFMode, cfg.AllowedOrigins)

	// Public routes
	api := app.Group("/api", middleware.OriginAllowed(cfg.AllowedOrigins))
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Get("/csrf", authHandler.CSRF)
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh) // No CSRF required - protected by HttpOnly refresh token
	auth.Post("/logout", csrf, authHandler.Logout)
	api.Get("/users/check-username", userHandler.CheckUsername)

	// Onboarding works before sign-up, keyed by X-Device-ID.
	onboarding := api.Group("/onboarding", middleware.AuthOptional(cfg.JWTSecret), csrf)
	onboarding.Get("/", onboardingHandler.State)
	onboarding.Post("/seen", onboardingHandler.MarkSeen)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired(cfg.JWTSecret), csrf)
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Put("/users/me/password", userHandler.ChangePassword)
	protected.Put("/users/me/push-token", userHandler.RegisterPushToken)
	protected.Post(
		"/users/me/export",
		limiter.New(limiter.Config{
			Max:        5,
			Expiration: 10 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				if sess := httpx.Session(c); sess.Authenticated() {
					return "export:" + sess.UserID
				}
				return c.IP()
			},
		}),
		userHandler.Export,
	)

	protected.Post("/drinks", drinkHandler.LogDrink)
	protected.Get("/drinks/latest", drinkHandler.Latest)

	protected.Get("/notes", noteHandler.ListCommunity)
	protected.Post("/notes", noteHandler.Create)
	protected.Get("/notes/:id", noteHandler.Get)
	protected.Get("/notes/:id/comments", noteHandler.ListComments)
	protected.Post("/notes/:id/comments", noteHandler.AddComment)
	protected.Post("/notes/:id/viewed", noteHandler.MarkViewed)

	protected.Get("/activity/unseen", activityHandler.Unseen)
	protected.Get("/home", homeHandler.Home)
	protected.Get("/encouragement", homeHandler.Encouragement)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(cfg.AllowedOrigins),
		middleware.AuthRequired(cfg.JWTSecret),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	app.Get("/health", func(c *fiber.Ctx) error {
		online, err := userCache.GetOnlineCount()
		if err != nil {
			logrus.WithError(err).Debug("failed to count online users")
		}
		return c.JSON(fiber.Map{
			"status":       "ok",
			"message":      "SipStop is running",
			"connections":  hub.Count(),
			"online_users": online,
		})
	})

	go func() {
		<-ctx.Done()
		logrus.Info("shutting down")
		<-ticks.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.WithError(err).Warn("server shutdown failed")
		}
	}()

	logrus.WithField("port", cfg.Port).Info("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("failed to start server")
	}

	if redisCache != nil {
		_ = redisCache.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
