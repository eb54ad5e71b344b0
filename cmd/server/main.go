package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/retail-pos/internal/config"
	"github.com/iliyamo/retail-pos/internal/handler"
	"github.com/iliyamo/retail-pos/internal/middleware"
	"github.com/iliyamo/retail-pos/internal/queue"
	"github.com/iliyamo/retail-pos/internal/repository"
	"github.com/iliyamo/retail-pos/internal/router"
	"github.com/iliyamo/retail-pos/internal/store"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment variables")
	}

	cfg := config.Load()

	// Open the configured store. When the database is unreachable the
	// service degrades to the in-memory backend instead of refusing to
	// start, so a register can keep selling through a database outage.
	stores := openStores(cfg)

	// Redis is optional: without it rate limiting and response caching
	// are simply disabled.
	rdb := config.NewRedisClient()

	e := echo.New()
	e.HideBanner = true

	rlCfg := config.LoadRateLimitConfig()
	if rlCfg.Enabled && rdb != nil {
		e.Use(middleware.RateLimit(rlCfg, rdb))
	}
	var cacheMW echo.MiddlewareFunc
	cacheCfg := config.LoadCacheConfig()
	if cacheCfg.Enabled && rdb != nil {
		cacheMW = middleware.ResponseCache(cacheCfg, rdb)
	}

	brokerURL := queue.BrokerURL()

	authH := handler.NewAuthHandler(cfg, stores.Users, stores.Tokens)
	userH := handler.NewUserHandler(cfg, stores.Users)
	catH := handler.NewCategoryHandler(stores.Categories)
	prodH := handler.NewProductHandler(stores.Products, stores.Categories)
	saleH := handler.NewSaleHandler(stores.Sales, stores.Products)
	rcptH := handler.NewReceiptHandler(stores.Sales, brokerURL)
	repH := handler.NewReportHandler(stores.Reports)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterCatalog(e, catH, prodH, cfg.JWTSecret, cacheMW)
	router.RegisterSales(e, saleH, rcptH, repH, cfg.JWTSecret, cacheMW)
	router.RegisterUsers(e, userH, cfg.JWTSecret)

	// The receipt consumer reconnects on its own; it only runs when a
	// broker is configured.
	if brokerURL != "" {
		go queue.StartReceiptConsumer(brokerURL)
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.DBDriver)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// openStores selects the storage backend. A database open or migrate
// failure falls back to the in-memory store with a loud warning; the
// memory driver can also be selected explicitly via DB_DRIVER=memory.
func openStores(cfg config.Config) *repository.Stores {
	if cfg.DBDriver == config.DriverMemory {
		log.Println("store: using in-memory backend (DB_DRIVER=memory), data will not survive restarts")
		return repository.NewMemoryStores()
	}

	db, err := store.Open(cfg)
	if err != nil {
		log.Printf("store: open %s failed: %v; falling back to in-memory backend", cfg.DBDriver, err)
		return repository.NewMemoryStores()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := store.Migrate(ctx, db); err != nil {
		log.Printf("store: migrate failed: %v; falling back to in-memory backend", err)
		_ = db.Close()
		return repository.NewMemoryStores()
	}
	return repository.NewSQLStores(db)
}
