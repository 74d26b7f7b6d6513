package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"society-auth/internal/config"
	"society-auth/internal/db"
	apihttp "society-auth/internal/http"
	"society-auth/internal/repository"
	"society-auth/internal/service"
	"society-auth/internal/sms"
)

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

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	tokenSvc, err := service.NewTokenService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMin)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLDays)*24*time.Hour,
	)
	if err != nil {
		// Clave debil o ausente: el proceso no debe arrancar.
		logger.Fatal("token service init", zap.Error(err))
	}

	userRepo := repository.NewPgUserRepository(pool)
	otpRepo := repository.NewPgOtpRepository(pool)
	refreshRepo := repository.NewPgRefreshTokenRepository(pool)

	var smsSender sms.Sender = sms.NewLogSender(logger)
	if cfg.TwoFactorAPIKey != "" {
		smsSender = sms.NewTwoFactorSender(cfg.TwoFactorAPIKey, cfg.SMSDelivery)
	}

	var otpLimiter service.OTPRateLimiter
	if cfg.OTPRateLimitMax > 0 {
		window := time.Duration(cfg.OTPExpiryMin) * time.Minute
		otpLimiter = service.NewOTPRateLimiter(window, cfg.OTPRateLimitMax)
		if cfg.RedisAddr != "" {
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.RedisAddr,
				Password: cfg.RedisPassword,
				DB:       cfg.RedisDB,
			})
			ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
			if err := redisClient.Ping(ctxPing).Err(); err != nil {
				logger.Warn("redis ping failed, using in-memory limiter", zap.Error(err))
			} else {
				otpLimiter = service.NewRedisOTPRateLimiter(redisClient, window, cfg.OTPRateLimitMax)
			}
			cancel()
		}
	}

	otpSvc := service.NewOtpService(logger, otpRepo, smsSender, otpLimiter,
		cfg.OTPLength, time.Duration(cfg.OTPExpiryMin)*time.Minute)
	authSvc := service.NewAuthService(logger, userRepo, otpRepo, refreshRepo, tokenSvc)

	authHandler := apihttp.NewAuthHandler(logger, otpSvc, authSvc)
	router := apihttp.NewRouter(logger, tokenSvc, authHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
