package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"juicebar-system/config"
	"juicebar-system/internal/database"
	"juicebar-system/internal/gateway/handlers"
	"juicebar-system/internal/gateway/middleware"
	"juicebar-system/internal/i18n"
	"juicebar-system/internal/logging"
	"juicebar-system/internal/menucache"
	"juicebar-system/internal/metrics"
	menuhandler "juicebar-system/internal/services/menu/handler"
	"juicebar-system/internal/services/menu/repository"
	"juicebar-system/internal/utils"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	cfg := config.LoadConfig()
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	db, err := database.NewConnection(cfg.DB.DSN(), log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if cfg.DB.MigrateOnStart {
		if err := database.MigrateMenuDB(db); err != nil {
			log.WithError(err).Fatal("Failed to migrate menu tables")
		}
	}

	tokens, err := utils.NewTokenManager(cfg.Auth.JWTSecret)
	if err != nil {
		log.WithError(err).Fatal("JWT_SECRET must be set")
	}

	cache := newMenuCache(cfg, log)
	menu := menuhandler.NewMenuHandler(repository.NewGormStore(db).Repositories(), cache, log)
	menuHTTP := handlers.NewMenuHTTPHandler(menu, newTranslator(cfg, log), log)

	limit, err := middleware.RateLimit(cfg.RateLimit.Rate)
	if err != nil {
		log.WithError(err).Fatal("Invalid RATE_LIMIT")
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.CORS.AllowOrigins))
	r.Use(limit)

	handlers.RegisterMenuRoutes(r, menuHTTP, middleware.JWTAuth(tokens))

	r.GET("/health", healthCheckHandler(db, cache))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.WithField("addr", addr).Info("Starting server")
	if err := r.Run(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

// newMenuCache honours MENU_CACHE_DRIVER; an unreachable Redis degrades to
// the in-process cache instead of refusing to start.
func newMenuCache(cfg config.Config, log *logrus.Logger) menucache.Cache {
	if cfg.Cache.Driver != "redis" {
		return menucache.NewMemoryCache(cfg.Cache.TTL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rdb, err := config.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, falling back to in-memory menu cache")
		return menucache.NewMemoryCache(cfg.Cache.TTL)
	}
	log.WithField("addr", cfg.Redis.Addr()).Info("Using redis menu cache")
	return menucache.NewRedisCache(rdb, cfg.Cache.TTL, log)
}

func newTranslator(cfg config.Config, log *logrus.Logger) i18n.Translator {
	if cfg.I18n.DictionaryPath == "" {
		return i18n.Identity{}
	}
	dict, err := i18n.LoadDictionary(cfg.I18n.DictionaryPath, cfg.I18n.DefaultLanguage)
	if err != nil {
		log.WithError(err).Warn("Failed to load translations, serving untranslated menu")
		return i18n.Identity{}
	}
	return dict
}

func healthCheckHandler(db *gorm.DB, cache menucache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		status := "healthy"
		httpStatus := http.StatusOK
		checks := map[string]string{"database": "healthy", "cache": "healthy"}

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unavailable"
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
		}
		version, err := cache.Version(ctx)
		if err != nil {
			checks["cache"] = "unavailable"
			if status == "healthy" {
				status = "degraded"
			}
		}

		c.JSON(httpStatus, gin.H{
			"status":        status,
			"message":       "Server is running",
			"checks":        checks,
			"cache_version": version,
			"timestamp":     time.Now(),
		})
	}
}
