package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "trialfinder-backend/cmd/api"
	devicedomain "trialfinder-backend/internal/device/domain"
	trialdomain "trialfinder-backend/internal/trial/domain"
	"trialfinder-backend/pkg/cache"
	"trialfinder-backend/pkg/config"
	"trialfinder-backend/pkg/database"
	"trialfinder-backend/pkg/firebase"
	"trialfinder-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := api.Dependencies{Config: cfg, Log: log}

	// Firebase (Firestore persistence and FCM). Optional for local search-only runs.
	if cfg.GoogleProjectID != "" || cfg.FirebaseCredentials != "" {
		app, err := firebase.NewApp(ctx, cfg.GoogleProjectID, cfg.FirebaseCredentials)
		if err != nil {
			log.WithError(err).Warn("Firebase unavailable")
		} else {
			defer app.Close()

			if fs, err := app.Firestore(ctx); err != nil {
				log.WithError(err).Warn("Firestore unavailable")
			} else {
				deps.Firestore = fs
			}
			if msg, err := app.Messaging(ctx); err != nil {
				log.WithError(err).Warn("FCM unavailable, push notifications disabled")
			} else {
				deps.Messaging = msg
			}
		}
	}

	// Postgres holds simplified text and device tokens
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		if err := db.AutoMigrate(&trialdomain.TrialSimplification{}, &devicedomain.DeviceToken{}); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
		deps.DB = db
	}

	// Cache: in-process LRU in front of Redis when configured
	stores := []cache.Store{cache.NewMemory(cfg.CacheSize, cfg.CacheTTL)}
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedis(ctx, cfg.RedisURL, cfg.CacheTTL)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, using in-memory cache only")
		} else {
			defer redisStore.Close()
			stores = append(stores, redisStore)
		}
	}
	deps.Cache = cache.NewTiered(cfg.CacheTTL, log, stores...)

	handler := api.NewHandler(ctx, deps)
	defer func() {
		if err := handler.Close(); err != nil {
			log.WithError(err).Warn("notification service close failed")
		}
	}()
	go handler.StartBackground(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Failed to start server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
	}
}
