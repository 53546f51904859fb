package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-myshop-agent/internal/ai"
	"go-myshop-agent/internal/auth"
	"go-myshop-agent/internal/config"
	"go-myshop-agent/internal/handlers"
	"go-myshop-agent/internal/reconcile"
	"go-myshop-agent/internal/session"
	"go-myshop-agent/internal/store"
)

func main() {
	cfg, foundEnv := config.Load()
	log := config.NewLogger(cfg.LogLevel)
	if !foundEnv {
		log.Warn("no .env file found, using the process environment")
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	mode, err := reconcile.ParseSalesMode(cfg.SalesSyncMode)
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	backend, err := store.Open(ctx, store.Options{
		Driver:    cfg.DBDriver,
		DSN:       cfg.DBDSN,
		RedisAddr: cfg.RedisAddr,
		CacheTTL:  cfg.CacheTTL,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open store")
	}
	defer backend.Close()

	assistant, err := ai.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create AI client")
	}
	defer assistant.Close()

	registry := session.NewRegistry(backend.Gateway, mode, log, cfg.SessionIdleTTL)
	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go registry.RunJanitor(janitorCtx, time.Minute)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Static("/uploads", cfg.UploadDir)

	h := &handlers.Handler{
		Registry:    registry,
		Users:       backend.Users,
		Issuer:      auth.NewIssuer(cfg.JWTSecret),
		Assistant:   assistant,
		Log:         log,
		PhoneRegion: cfg.PhoneRegion,
		UploadDir:   cfg.UploadDir,
		BaseURL:     cfg.BaseURL,
	}
	h.Routes(r, cfg.AllowRegistration)
	if cfg.AllowRegistration {
		log.Warn("registration route is OPEN, disable it in production")
	}

	// Built frontend, when shipped next to the binary.
	if _, err := os.Stat("./web/index.html"); err == nil {
		r.Static("/assets", "./web/assets")
		r.NoRoute(func(c *gin.Context) {
			c.File("./web/index.html")
		})
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("base_url", cfg.BaseURL).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown")
	}
	registry.Wait()
}
