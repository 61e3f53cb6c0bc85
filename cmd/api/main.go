package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"recoveryos/internal/config"
	apihttp "recoveryos/internal/http"
	"recoveryos/internal/metrics"
	"recoveryos/internal/notify"
	"recoveryos/internal/ratelimit"
	"recoveryos/internal/service"
	"recoveryos/internal/store"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const auditLogCapacity = 1024

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Todo el estado del núcleo vive en el proceso: un reinicio lo descarta.
	limiter := ratelimit.NewLimiter(cfg.RateLimitCapacity, time.Duration(cfg.RateLimitWindowSeconds)*time.Second)
	checkinStore := store.NewCheckinStore()
	consentStore := store.NewConsentStore()
	userStore := store.NewMemoryUserStore()
	auditLog := store.NewAuditLog(auditLogCapacity)

	m := metrics.New(cfg.AppVersion)

	var notifier notify.Notifier = notify.NewDisabledNotifier("sms notifications disabled")
	if cfg.EnableSMSNotifications {
		notifier = notify.NewLogNotifier(logger)
	}

	var tokenStore service.RefreshTokenStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}
	jwtSvc := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	scorer := service.NewRiskScorer(cfg.RiskMinCheckins)
	checkinSvc := service.NewCheckinService(logger, limiter, checkinStore, scorer, m)
	consentSvc := service.NewConsentService(logger, consentStore, notifier, m)
	userSvc := service.NewUserService(logger, userStore)
	orchestrator := service.NewOrchestrator(logger, service.NewPatternsAnalyst(), service.NewSafetyAuditor(), auditLog)

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	checkinHandler := apihttp.NewCheckinHandler(logger, checkinSvc, cfg.ClientKeySalt, window)
	consentHandler := apihttp.NewConsentHandler(logger, consentSvc)
	briefingHandler := apihttp.NewBriefingHandler(logger, checkinSvc, consentSvc, orchestrator)
	systemHandler := apihttp.NewSystemHandler(cfg.AppVersion)
	userHandler := apihttp.NewUserHandler(logger, userSvc, jwtSvc)

	router := apihttp.NewRouter(logger, apihttp.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		CSPReportOnly:  cfg.CSPReportOnly,
		MetricsEnabled: cfg.MetricsEnabled,
	}, m, jwtSvc, checkinHandler, consentHandler, briefingHandler, systemHandler, userHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("version", cfg.AppVersion),
		zap.Int("rate_limit_capacity", cfg.RateLimitCapacity),
		zap.Int("rate_limit_window_seconds", cfg.RateLimitWindowSeconds),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
