package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lucas-arr/leadgate/internal/api"
	"github.com/lucas-arr/leadgate/internal/cache"
	"github.com/lucas-arr/leadgate/internal/config"
	"github.com/lucas-arr/leadgate/internal/db"
	"github.com/lucas-arr/leadgate/internal/ingest"
	"github.com/lucas-arr/leadgate/internal/middleware"
	"github.com/lucas-arr/leadgate/internal/observ"
	"github.com/lucas-arr/leadgate/internal/repository/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no parent deadline — connecting may take as long as
	// it needs. Per-request contexts take over once the server runs.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(context.Background()); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// The schema cache is optional: without REDIS_URL every snapshot
	// read goes straight to Postgres, which is correct, just busier.
	var schemas *cache.SchemaCache
	if cfg.RedisURL != "" {
		schemas, err = cache.NewSchemaCache(context.Background(), cfg.RedisURL, 30*time.Second, logger)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer schemas.Close()
	} else {
		logger.Info("schema cache disabled (no REDIS_URL)")
	}

	registry := prometheus.NewRegistry()
	metrics := observ.NewMetrics(registry)

	pool := database.Pool()
	accountRepo := postgres.NewAccountStore(pool)
	fieldRepo := postgres.NewFieldStore(pool)
	recordRepo := postgres.NewRecordStore(pool)
	leadRepo := postgres.NewLeadStore(pool)
	userRepo := postgres.NewUserStore(pool)

	ingestService := ingest.NewService(accountRepo, fieldRepo, recordRepo, schemas, metrics, cfg.ExcludedFields, logger)

	ingestHandler := api.NewIngestHandler(ingestService, metrics, logger)
	authHandler := api.NewAuthHandler(userRepo, cfg.JWTSecret, logger)
	accountHandler := api.NewAccountHandler(accountRepo, logger)
	fieldHandler := api.NewFieldHandler(fieldRepo, accountRepo, schemas, logger)
	recordHandler := api.NewRecordHandler(recordRepo, logger)
	leadHandler := api.NewLeadHandler(leadRepo, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Logger(), gin.Recovery())

	// Public surface: health for load balancers, metrics for the
	// scraper, the webhook sink itself, and the endpoints that mint
	// operator tokens.
	srv.GET("/v1/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context()); err != nil {
			c.JSON(503, gin.H{"status": "degraded"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})
	srv.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	srv.POST("/ingest/:api_key", ingestHandler.Ingest)
	srv.POST("/v1/auth/signup", authHandler.Signup)
	srv.POST("/v1/auth/login", authHandler.Login)

	// Everything else is the admin surface, behind operator JWTs.
	v1 := srv.Group("/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	v1.POST("/accounts", accountHandler.Create)
	v1.GET("/accounts", accountHandler.List)
	v1.GET("/accounts/:id", accountHandler.GetByID)
	v1.PUT("/accounts/:id", accountHandler.Update)
	v1.DELETE("/accounts/:id", accountHandler.Delete)
	v1.PATCH("/accounts/:id/toggle-auto-create", accountHandler.ToggleAutoCreate)

	v1.GET("/accounts/:id/fields", fieldHandler.List)
	v1.POST("/accounts/:id/fields", fieldHandler.Create)
	v1.PUT("/fields/:id", fieldHandler.Update)
	v1.DELETE("/fields/:id", fieldHandler.Delete)

	v1.GET("/accounts/:id/records", recordHandler.List)
	v1.GET("/records/:id", recordHandler.GetByID)
	v1.GET("/accounts/:id/leads", leadHandler.List)
	v1.GET("/leads/:id", leadHandler.GetByID)

	logger.Info("starting leadgate",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
