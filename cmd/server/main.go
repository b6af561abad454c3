package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/otpstudio/studio-server-go/internal/auth"
	"github.com/otpstudio/studio-server-go/internal/config"
	"github.com/otpstudio/studio-server-go/internal/database"
	"github.com/otpstudio/studio-server-go/internal/handler"
	"github.com/otpstudio/studio-server-go/internal/jobs"
	"github.com/otpstudio/studio-server-go/internal/middleware"
	"github.com/otpstudio/studio-server-go/internal/redis"
	"github.com/otpstudio/studio-server-go/internal/repository"
	"github.com/otpstudio/studio-server-go/internal/service"
	"github.com/otpstudio/studio-server-go/internal/sse"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := cfg.IsProduction()
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	poolOpts := database.PoolOptions{
		MaxOpenConns:    config.DBMaxOpenConns,
		MaxIdleConns:    config.DBMaxIdleConns,
		ConnMaxLifetime: config.DBConnMaxLifetime,
	}

	// anon tier: row-level security applies
	anonDB, err := database.Connect(cfg.DatabaseURL, poolOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer anonDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := anonDB.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected (anon tier)")

	// privileged tier: held only server-side, used by the delete route.
	// Absence is tolerated at startup; the delete route then fails with a
	// misconfiguration error.
	var privilegedPosts repository.PostRepository
	if cfg.ServiceDatabaseURL != "" {
		serviceDB, err := database.Connect(cfg.ServiceDatabaseURL, poolOpts)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database (service tier)")
		}
		defer serviceDB.Close()
		privilegedPosts = repository.NewPostRepository(serviceDB.DB)
		log.Info().Msg("database connected (service tier)")
	} else {
		log.Warn().Msg("SERVICE_DATABASE_URL not set: privileged delete route disabled")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	anonPosts := repository.NewPostRepository(anonDB.DB)
	leadRepo := repository.NewLeadRepository(anonDB.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())

	authService := service.NewAuthService(tokenService, cfg.AdminPasscode, cfg.AdminPasscodeHash)
	aiService := service.NewAIService(cfg.AnthropicAPIKey, cfg.OpenAIAPIKey)
	checkoutService := service.NewCheckoutService(cfg.StripeSecretKey, cfg.SiteBaseURL)
	postService := service.NewPostService(privilegedPosts, broker)
	contactService := service.NewContactService(leadRepo)

	rateLimiter := service.NewRateLimiter(redisClient.Client)

	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	ipRateLimitMiddleware := middleware.NewIPRateLimitMiddleware(
		rateLimiter, cfg.RateLimitMax, cfg.RateLimitWindow(), cfg.RateLimitEnabled,
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService)
	aiHandler := handler.NewAIHandler(aiService, isProduction)
	adminHandler := handler.NewAdminHandler(postService, isProduction)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, isProduction)
	contactHandler := handler.NewContactHandler(contactService, isProduction)
	postsHandler := handler.NewPostsHandler(anonPosts, redisClient)
	eventsHandler := handler.NewEventsHandler(broker)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(ipRateLimitMiddleware.Handler)

		r.Post("/auth/login", authHandler.Login)
		r.Post("/contact/submit", contactHandler.Submit)
		r.Post("/create-checkout-session", checkoutHandler.CreateSession)
		r.Get("/posts", postsHandler.List)
		r.Get("/posts/{slug}", postsHandler.GetBySlug)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			r.Post("/ai/generate", aiHandler.Generate)
			r.Post("/admin/delete-post", adminHandler.DeletePost)
			r.Get("/admin/events", eventsHandler.ServeHTTP)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Handle("/*", handler.StaticFileServer(cfg.StaticDir))
	})

	// flush through the privileged connection when it exists; the anon
	// role may not be allowed to update view counters
	viewFlushPosts := privilegedPosts
	if viewFlushPosts == nil {
		viewFlushPosts = anonPosts
	}
	viewFlushJob := jobs.NewViewFlushJob(redisClient, viewFlushPosts, config.ViewFlushInterval)
	viewFlushJob.Start()
	defer viewFlushJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
