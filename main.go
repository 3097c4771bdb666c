package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"tripplanner-backend/config"
	"tripplanner-backend/database"
	"tripplanner-backend/handlers"
	"tripplanner-backend/middleware"
	"tripplanner-backend/services"
	"tripplanner-backend/utils"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis (optional, won't crash if unavailable)
	rdb := database.ConnectRedis(ctx, cfg.RedisURL)

	var cache services.SummaryCache
	if rdb != nil {
		cache = services.NewRedisSummaryCache(rdb, cfg.CacheTTL)
	}

	var pusher services.Pusher
	if cfg.FirebaseCredPath != "" {
		fp, err := services.NewFirebasePusher(ctx, cfg.FirebaseCredPath)
		if err != nil {
			slog.Warn("⚠️  Firebase not available, push notifications disabled", "error", err)
		} else {
			pusher = fp
			slog.Info("✅ Firebase messaging initialised")
		}
	}

	notifs := services.NewNotificationService(db, cache, pusher)
	h := &handlers.Handler{
		Tokens:        utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Users:         services.NewUserService(db),
		Trips:         services.NewTripService(db, notifs),
		Invites:       services.NewInviteService(db, notifs, services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.AppName), cfg.AppURL),
		Itinerary:     services.NewItineraryService(db, notifs),
		Polls:         services.NewPollService(db, notifs),
		Chat:          services.NewChatService(db, notifs),
		Notifications: notifs,
	}

	gin.SetMode(gin.ReleaseMode)
	r := handlers.NewRouter(h, handlers.RouterConfig{
		AppName:     cfg.AppName,
		CORSOrigins: cfg.CORSAllowedOrigins,
		RateLimiter: middleware.NewRateLimiter(rdb, cfg.RateLimitAnon, cfg.RateLimitUser),
	})

	// Start server
	addr := "0.0.0.0:" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		slog.Info("🚀 Server starting", "app", cfg.AppName, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	slog.Info("👋 Server stopped")
}
