package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/natourcam/tourism-api/internal/config"     // Internal config loader
	"github.com/natourcam/tourism-api/internal/database"   // MySQL connection setup
	"github.com/natourcam/tourism-api/internal/event"      // Booking event publisher/consumer
	"github.com/natourcam/tourism-api/internal/handler"    // HTTP handlers
	"github.com/natourcam/tourism-api/internal/lifecycle"  // Booking lifecycle engine
	"github.com/natourcam/tourism-api/internal/middleware" // Rate limiting and caching
	"github.com/natourcam/tourism-api/internal/repository" // Data access layer
	"github.com/natourcam/tourism-api/internal/router"     // Route registration
)

func main() {
	// A missing .env is fine; production supplies real env vars.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories and the lifecycle engine.  The store owns the
	// transaction boundaries; the publisher delivers events after commit.
	store := repository.NewStore(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	notifications := repository.NewNotificationRepo(db)
	publisher := event.NewPublisher(cfg.AMQPURL)
	engine := lifecycle.NewEngine(store, publisher)

	// Background consumer turns booking events into notification rows.
	go func() {
		if err := event.StartConsumer(cfg.AMQPURL, notifications); err != nil {
			log.Printf("event consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis-backed rate limiting and response caching.  When Redis is
	// unreachable both middlewares degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterPublic(e, &handler.PublicHandler{Tours: store.Tours, Availabilities: store.Availabilities})
	router.RegisterTourist(e,
		handler.NewBookingHandler(engine, store.Bookings, store.Payments),
		handler.NewNotificationHandler(notifications),
		cfg.JWTSecret,
	)
	router.RegisterOperator(e,
		handler.NewOperatorHandler(store.Tours, store.Availabilities),
		handler.NewOperatorBookingHandler(engine, store.Tours, store.Bookings),
		cfg.JWTSecret,
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
