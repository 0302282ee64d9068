package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/HimanshuSagar02/RCR-backend/internal/config"
	"github.com/HimanshuSagar02/RCR-backend/internal/database"
	"github.com/HimanshuSagar02/RCR-backend/internal/handlers"
	"github.com/HimanshuSagar02/RCR-backend/internal/mailer"
	"github.com/HimanshuSagar02/RCR-backend/internal/repository"
	"github.com/HimanshuSagar02/RCR-backend/internal/server"
	"github.com/HimanshuSagar02/RCR-backend/internal/services"
	"github.com/HimanshuSagar02/RCR-backend/internal/utils"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := utils.NewLogger(cfg.App.Env)
	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()
	sugar.Infof("Starting RCR backend in %s environment on port %d", cfg.App.Env, cfg.App.Port)

	db, mongoClient, err := database.ConnectMongo(cfg.Mongo.URI, cfg.Mongo.Database, sugar)
	if err != nil {
		sugar.Fatal(err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = database.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, sugar)
		if err != nil {
			sugar.Fatal(err)
		}
	} else {
		sugar.Warn("Redis not configured. OTP rate limiting is disabled.")
	}

	brevo := mailer.NewBrevoClient(cfg.Brevo.APIKey, cfg.Brevo.FromEmail, cfg.Brevo.FromName)
	if !brevo.IsConfigured() {
		sugar.Warn("Brevo client not fully configured. OTP emails will fail until it is.")
	} else {
		sugar.Info("Brevo client configured.")
	}

	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	userRepo := repository.NewMongoUserRepo(db, cfg.Mongo.Collection)
	authSvc := services.NewAuthService(
		userRepo,
		brevo,
		rdb,
		tokens,
		cfg.Security.OtpTTL,
		cfg.Security.OtpRateLimitPerEmailHr,
		cfg.Security.PasswordHashCost,
		logger,
	)
	h := handlers.NewHandler(authSvc, logger, cfg.IsProduction(), cfg.JWT.TTL)
	diag := handlers.NewDiagHandler(mongoClient, userRepo, cfg.Mongo.Database)

	app := server.New(cfg, h, diag, tokens, userRepo, logger)

	go func() {
		listenAddr := fmt.Sprintf(":%d", cfg.App.Port)
		sugar.Infof("Server listening on %s", listenAddr)
		if err := app.Listen(listenAddr); err != nil {
			sugar.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("Shutting down server...")

	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		sugar.Errorf("Fiber app shutdown error: %v", err)
	}
	if err := mongoClient.Disconnect(ctxShut); err != nil {
		sugar.Errorf("MongoDB disconnect error: %v", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			sugar.Errorf("Redis client close error: %v", err)
		}
	}

	sugar.Info("Graceful shutdown complete.")
}
