// Package main runs the copy-trading dashboard API server: CSV import,
// trade and funding listings with computed metrics, monthly summaries,
// and CSV export.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"copytrade-dashboard/internal/api"
	"copytrade-dashboard/internal/auth"
	"copytrade-dashboard/internal/ingestion"
	"copytrade-dashboard/internal/metrics"
	"copytrade-dashboard/internal/storage"
	chstore "copytrade-dashboard/internal/storage/clickhouse"
	"copytrade-dashboard/internal/storage/memory"
	"copytrade-dashboard/internal/storage/migrations"
	pgstore "copytrade-dashboard/internal/storage/postgres"
)

// allStores holds all storage implementations.
type allStores struct {
	tradeStore   storage.TradeStore
	fundingStore storage.FundingStore
	summaryStore storage.MonthlySummaryStore
}

func main() {
	// Load .env file if it exists; system env vars win.
	_ = godotenv.Load()

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", envOr("HTTP_ADDR", ":8080"), "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	redisAddr := flag.String("redis-addr", os.Getenv("REDIS_ADDR"), "Redis address for session checks (optional)")
	jwtSecret := flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "HS256 secret shared with the identity service")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	shutdownTimeout := flag.Duration("shutdown-timeout", 15*time.Second, "Graceful shutdown timeout")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *jwtSecret == "" {
		logger.Fatal("--jwt-secret is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	aggregator := metrics.NewAggregator(stores.tradeStore, stores.fundingStore, stores.summaryStore)
	importer := ingestion.NewImporter(stores.tradeStore, stores.fundingStore, aggregator)

	verifier := auth.Verifier{JWT: auth.JWT{Secret: []byte(*jwtSecret)}}
	if *redisAddr != "" {
		verifier.Sessions = auth.NewRedisSessionStore(&redis.Options{Addr: *redisAddr})
		logger.Printf("Session revocation checks enabled via redis at %s", *redisAddr)
	}

	server := api.NewServer(api.Options{
		Importer:     importer,
		TradeStore:   stores.tradeStore,
		FundingStore: stores.fundingStore,
		SummaryStore: stores.summaryStore,
		Verifier:     verifier,
		Logger:       logger,
	})

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.Handler(),
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), *shutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("Shutdown error: %v", err)
		}
		cancel()
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores, running migrations first.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			tradeStore:   memory.NewTradeStore(),
			fundingStore: memory.NewFundingStore(),
			summaryStore: memory.NewMonthlySummaryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		tradeStore:   pgstore.NewTradeStore(pool),
		fundingStore: pgstore.NewFundingStore(pool),
		summaryStore: chstore.NewMonthlySummaryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// envOr returns the env var value or a fallback.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
