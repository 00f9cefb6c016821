package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roomster/roomster-api/internal/config"
	"github.com/roomster/roomster-api/internal/domain/matching"
	"github.com/roomster/roomster-api/internal/domain/relation"
	"github.com/roomster/roomster-api/internal/domain/user"
	"github.com/roomster/roomster-api/internal/middleware"
	"github.com/roomster/roomster-api/internal/pkg/database"
	"github.com/roomster/roomster-api/internal/pkg/facebook"
	"github.com/roomster/roomster-api/internal/pkg/jwt"
	pkgresponse "github.com/roomster/roomster-api/internal/pkg/response"
	"github.com/roomster/roomster-api/internal/pkg/synclock"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Roomster API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redis, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redis)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL)

	facebookClient := facebook.NewClient(facebook.Config{
		BaseURL:   cfg.FacebookGraphURL,
		AppID:     cfg.FacebookAppID,
		AppSecret: cfg.FacebookAppSecret,
		PageLimit: cfg.FacebookPageLimit,
		MaxDepth:  cfg.FacebookMaxDepth,
		Timeout:   time.Duration(cfg.FacebookTimeoutSeconds) * time.Second,
	})

	syncLock := synclock.NewLock(redis, cfg.SyncLockTTL)

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	relationRepo := relation.NewRepository(db)
	matchingRepo := matching.NewRepository(db)

	// ---------- Services ----------
	relationService := relation.NewService(relationRepo, userRepo, facebookClient, syncLock, relation.ServiceConfig{
		UpdatePeriod:       cfg.RelationUpdatePeriod,
		MutualFriendsLimit: cfg.FacebookPageLimit,
	})
	matchingService := matching.NewService(matchingRepo, cfg.MatchingPageSize)

	// ---------- Handlers ----------
	relationHandler := relation.NewHandler(relationService)
	matchingHandler := matching.NewHandler(matchingService, userRepo)

	authMiddleware := middleware.Auth(jwtService)

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
			pkgresponse.OK(w, map[string]string{"message": "pong"})
		})

		r.Mount("/relations", relationHandler.Routes(authMiddleware))
		r.Mount("/matching", matchingHandler.Routes(authMiddleware))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
