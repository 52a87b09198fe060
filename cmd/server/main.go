package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/murenzi/renting-api/internal/config"
	"github.com/murenzi/renting-api/internal/database"
	"github.com/murenzi/renting-api/internal/handler"
	"github.com/murenzi/renting-api/internal/mailer"
	"github.com/murenzi/renting-api/internal/middleware"
	"github.com/murenzi/renting-api/internal/queue"
	"github.com/murenzi/renting-api/internal/repository"
	"github.com/murenzi/renting-api/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env wins
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	geo := repository.NewGeographyRepo(db)
	profiles := repository.NewProfileRepo(db)
	properties := repository.NewPropertyRepo(db)
	types := repository.NewPropertyTypeRepo(db)
	payments := repository.NewPaymentRepo(db)
	messages := repository.NewMessageRepo(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	geoH := handler.NewGeographyHandler(geo)
	pubH := handler.NewPropertyPublicHandler(properties, types, geo)
	ownH := handler.NewPropertyOwnerHandler(cfg, properties, types, profiles, geo, payments)
	profH := handler.NewProfileHandler(cfg, profiles, geo)
	msgH := handler.NewMessageHandler(messages)

	// Background consumers: outbound mail and the published-listings feed.
	var sender mailer.Sender = mailer.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mailer.SMTPSender{Host: cfg.SMTPHost, Port: cfg.SMTPPort, From: cfg.SMTPFrom}
	}
	go queue.StartMailConsumer(sender)
	go queue.StartListingConsumer()

	e := echo.New()

	// Redis-backed rate limiting and response caching on public browsing.
	// Both degrade to no-ops when Redis is unreachable.
	var publicMW []echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		publicMW = append(publicMW,
			middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
			middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
		)
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, geoH, pubH, msgH, publicMW...)
	router.RegisterProfile(e, profH, cfg.JWTSecret)
	router.RegisterLandlord(e, ownH, cfg.JWTSecret)
	router.RegisterManager(e, geoH, pubH, msgH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
