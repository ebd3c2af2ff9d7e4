package main // Entry point package

import (
    "context" // context controls the sweeper's lifetime
    "log"     // Logging library
    "time"    // sweeper interval arithmetic

    "github.com/joho/godotenv"    // loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/restaurant-seat-reservation/internal/availability"
    "github.com/iliyamo/restaurant-seat-reservation/internal/booking"
    "github.com/iliyamo/restaurant-seat-reservation/internal/config"
    "github.com/iliyamo/restaurant-seat-reservation/internal/database"
    "github.com/iliyamo/restaurant-seat-reservation/internal/handler"
    "github.com/iliyamo/restaurant-seat-reservation/internal/middleware"
    "github.com/iliyamo/restaurant-seat-reservation/internal/queue"
    "github.com/iliyamo/restaurant-seat-reservation/internal/repository"
    "github.com/iliyamo/restaurant-seat-reservation/internal/router"
    queue_publisher "github.com/iliyamo/restaurant-seat-reservation/internal/service"
)

func main() {
    // .env is a development convenience; real deployments set the
    // environment directly.
    _ = godotenv.Load()

    cfg := config.Load() // Load environment config

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Repositories over the shared pool.
    restaurants := repository.NewRestaurantRepo(db)
    bookings := repository.NewBookingRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    // Core services.
    clock := booking.SystemClock{}
    publisher := queue_publisher.NewRabbitPublisher("")
    svc := booking.NewService(restaurants, bookings, clock, publisher)
    engine := availability.NewEngine(restaurants, bookings, clock)

    // Background workers: the expiry sweeper enforcing the arrival window
    // and the audit consumer writing logs/booking.log.
    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()
    sweeper := booking.NewSweeper(svc, bookings, clock,
        time.Duration(cfg.SweepIntervalSec)*time.Second, cfg.SweepBatch)
    go sweeper.Run(ctx)
    go func() {
        if err := queue.StartBookingConsumer(); err != nil {
            log.Printf("booking-consumer: %v", err)
        }
    }()

    e := echo.New() // Create Echo instance

    // Redis-backed rate limiting and response caching degrade to no-ops
    // when Redis is unreachable at startup.
    if rdb := config.NewRedisClient(); rdb != nil {
        e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
        e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    } else {
        log.Print("redis unavailable; rate limiting and response cache disabled")
    }

    router.RegisterRoutes(e) // health check
    router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
    router.RegisterPublic(e, handler.NewPublicHandler(restaurants, engine))
    router.RegisterCustomer(e, handler.NewCustomerHandler(svc, bookings), cfg.JWTSecret)
    router.RegisterStaff(e, handler.NewStaffHandler(svc, bookings, restaurants), cfg.JWTSecret)
    router.RegisterAdmin(e, handler.NewAdminHandler(cfg, restaurants, users), cfg.JWTSecret)

    addr := ":" + cfg.Port                                // Address string with port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

    if err := e.Start(addr); err != nil { // Start HTTP server
        log.Fatal(err) // Log and exit if server fails
    }
}
