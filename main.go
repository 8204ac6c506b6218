// api/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storefront/api/analytics"
	"storefront/api/config"
	"storefront/api/database"
	"storefront/api/handlers"
	"storefront/api/logger"
	"storefront/api/mailer"
	"storefront/api/media"
	"storefront/api/middleware"
	"storefront/api/store"
	"storefront/api/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Server.Mode)
	defer func() { _ = log.Sync() }()

	if cfg.Server.Mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Initialize PostgreSQL Database (users, OTPs, token blacklist) ---
	pg, err := database.NewPostgresDB(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Failed to initialize PostgreSQL database", zap.Error(err))
	}
	defer pg.Close()

	// --- Initialize ClickHouse Database (analytics events) ---
	ch, err := database.NewClickHouseDB(cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to initialize ClickHouse database", zap.Error(err))
	}
	defer ch.Close()

	// --- Initialize MongoDB (catalog and customer queries) ---
	mongoDB, err := database.NewMongoDB(cfg.Mongo, log)
	if err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}
	defer mongoDB.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pg.Migrate(migrateCtx); err != nil {
		log.Fatal("Failed to migrate PostgreSQL schema", zap.Error(err))
	}
	if err := ch.Migrate(migrateCtx); err != nil {
		log.Fatal("Failed to migrate ClickHouse schema", zap.Error(err))
	}
	cancelMigrate()

	cld, err := media.NewCloudinary(cfg.Cloudinary, log)
	if err != nil {
		log.Fatal("Failed to initialize Cloudinary", zap.Error(err))
	}
	mail := mailer.NewSMTPMailer(cfg.Mail, log)
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.JWTIssuer)

	// --- Initialize Stores ---
	userStore := store.NewUserStore(pg.DB, log)
	otpStore := store.NewOTPStore(pg.DB)
	tokenStore := store.NewTokenStore(pg.DB)
	analyticsStore := store.NewAnalyticsStore(ch, log)
	categoryStore := store.NewCategoryStore(mongoDB)
	productStore := store.NewProductStore(mongoDB, log)
	queryStore := store.NewQueryStore(mongoDB, log)

	// --- Initialize Handlers ---
	h := handlers.Set{
		Analytics:  handlers.NewAnalyticsHandlers(analyticsStore, analytics.NewEngine(analyticsStore), cfg.Server.RequestTimeout, log),
		Auth:       handlers.NewAuthHandlers(userStore, otpStore, tokenStore, tokens, mail, cfg.Auth.OTPTTL, log),
		Users:      handlers.NewUserHandlers(userStore, log),
		Categories: handlers.NewCategoryHandlers(categoryStore, log),
		Products:   handlers.NewProductHandlers(productStore, categoryStore, log),
		Queries:    handlers.NewQueryHandlers(queryStore, mail, cfg.Mail.AdminNotifyTo, log),
		Media:      handlers.NewMediaHandlers(cld, log),
		Contact:    handlers.NewContactHandlers(mail, cfg.Mail.CompanyInbox, log),
		Health: handlers.NewHealthHandlers(map[string]handlers.Pinger{
			"postgres":   pg,
			"clickhouse": ch,
			"mongodb":    mongoDB,
		}, log),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterRoutes(r, h, middleware.AuthRequired(tokens, tokenStore, userStore, log))

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("API server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("API server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
