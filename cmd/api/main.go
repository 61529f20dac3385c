package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/clearhaze/streak-engine/internal/adapters/cache"
	adapterHTTP "github.com/clearhaze/streak-engine/internal/adapters/handler/http"
	"github.com/clearhaze/streak-engine/internal/adapters/repository"
	"github.com/clearhaze/streak-engine/internal/core/domain"
	"github.com/clearhaze/streak-engine/internal/core/services"
	"github.com/clearhaze/streak-engine/internal/core/workers"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	startTime := time.Now()

	_ = godotenv.Load()

	serverPort := envOr("PORT", "8080")
	jwtSecret := envOr("JWT_SECRET", "dev-only-secret-change-me")
	zoneName := envOr("TIMEZONE", "UTC")

	loc, err := time.LoadLocation(zoneName)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", zoneName)
		loc = time.UTC
	}

	// With no DB_NAME the engine runs fully in memory, which is enough for
	// local development against the mobile client.
	var db *sqlx.DB
	var kv repository.KVStore
	var accounts domain.AccountRepository = repository.NewInMemoryAccountRepository()

	dbName := os.Getenv("DB_NAME")
	if dbName != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			envOr("DB_USER", "streak_user"),
			envOr("DB_PASSWORD", "secret"),
			envOr("DB_HOST", "localhost"),
			envOr("DB_PORT", "5432"),
			dbName,
		)

		log.Println("Connecting to database...")
		db, err = sqlx.Connect("pgx", dsn)
		if err != nil {
			log.Fatalf("Critical: Failed to connect to database: %v", err)
		}
		defer db.Close()

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
		log.Println("Database connected successfully.")

		kv = repository.NewPostgresKVStore(db)
	} else {
		log.Println("DB_NAME not set, running with in-memory storage.")
		kv = repository.NewInMemoryKVStore()
	}

	var rdb *redis.Client
	if host := os.Getenv("REDIS_HOST"); host != "" {
		dbIndex, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
		rdb, err = cache.NewRedisClient(host, envOr("REDIS_PORT", "6379"), os.Getenv("REDIS_PASSWORD"), dbIndex)
		if err != nil {
			log.Printf("Redis unavailable, caching and rate limiting disabled: %v", err)
			rdb = nil
		}
	}

	ledgerRepo := repository.NewKVLedgerRepository(kv)

	var profiles domain.ProfileRepository = repository.NewKVProfileRepository(kv)
	if rdb != nil {
		profiles = repository.NewCachedProfileRepository(profiles, rdb)
	}

	if db != nil {
		accounts = repository.NewPostgresAccountRepository(db)
	}

	checkInService := services.NewCheckInService(ledgerRepo, profiles)
	calendarService := services.NewCalendarService(ledgerRepo, profiles)
	metricsService := services.NewMetricsService(profiles)
	authService := services.NewAuthService(accounts)
	tokenService := services.NewTokenService(jwtSecret, "streak-engine", 24*time.Hour, accounts)

	checkInService.OnLedgerChange(calendarService.Invalidate)

	rootCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	midnight := workers.NewMidnightWorker(loc,
		func(ctx context.Context) { calendarService.InvalidateAll() },
		func(ctx context.Context) { checkInService.Sweep(ctx) },
	)
	midnight.Start(rootCtx)

	go func() {
		for event := range checkInService.Resets() {
			log.Printf("Streak reset for account %s at %s", event.AccountID, event.OccurredAt.Format(time.RFC3339))
		}
	}()

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(authService, tokenService),
		CheckInHandler:  adapterHTTP.NewCheckInHandler(checkInService),
		CalendarHandler: adapterHTTP.NewCalendarHandler(calendarService),
		MetricsHandler:  adapterHTTP.NewMetricsHandler(metricsService),
		TokenService:    tokenService,
		DB:              db,
		Redis:           rdb,
		StartTime:       startTime,
	})

	srv := &http.Server{
		Addr:         ":" + serverPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Streak engine running on http://localhost:%s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	cancelWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
