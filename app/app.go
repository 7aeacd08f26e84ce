// File: app/app.go
package app

import (
	"context"
	"go-auth-api/config"
	"go-auth-api/db"
	"go-auth-api/handler"
	"go-auth-api/logger"
	"go-auth-api/mailer"
	"go-auth-api/repository"
	"go-auth-api/router"
	"go-auth-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	if err := db.RunMigrations("file://db/migrations"); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---
	cfg := config.AppConfig

	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)

	authService := service.NewAuthService(userRepo, tokenRepo, service.TokenConfig{
		SecretKey:       cfg.JWT.SecretKey,
		AccessTokenTTL:  time.Duration(cfg.JWT.AccessTokenTTLDays) * 24 * time.Hour,
		RefreshTokenTTL: time.Duration(cfg.JWT.RefreshTokenTTLDays) * 24 * time.Hour,
		Issuer:          cfg.JWT.Issuer,
	})

	resetService := service.NewResetService(redisClient, service.ResetConfig{
		SecretKey:     cfg.JWT.SecretKey,
		ResetTokenTTL: time.Duration(cfg.JWT.ResetTokenTTLHours) * time.Hour,
		Issuer:        cfg.JWT.Issuer,
	})

	smtpMailer := mailer.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)

	accountService := service.NewAccountService(userRepo, authService, resetService, smtpMailer, service.WorkflowConfig{
		StoreTimeout: time.Duration(cfg.Store.TimeoutSeconds) * time.Second,
		MaxRetries:   cfg.Store.MaxRetries,
		AppURL:       cfg.Mail.AppURL,
	})

	accountHandler := handler.NewAccountHandler(accountService)

	// Start the router with all handlers
	r := router.NewRouter(accountHandler, authService)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
