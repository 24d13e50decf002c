// Package main imports a CSV export for one owner from the command
// line, bypassing the HTTP surface. Useful for backfills and local
// inspection with --use-memory.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"copytrade-dashboard/internal/ingestion"
	"copytrade-dashboard/internal/metrics"
	"copytrade-dashboard/internal/reporting"
	"copytrade-dashboard/internal/storage"
	chstore "copytrade-dashboard/internal/storage/clickhouse"
	"copytrade-dashboard/internal/storage/memory"
	"copytrade-dashboard/internal/storage/migrations"
	pgstore "copytrade-dashboard/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()

	kind := flag.String("kind", "trades", "Import kind: trades or funding")
	owner := flag.String("owner", "", "Owner id to import for")
	file := flag.String("file", "", "Path to the CSV file")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage (dry run: parse and print the monthly summary)")

	flag.Parse()

	logger := log.New(os.Stdout, "[import] ", log.LstdFlags|log.Lshortfile)

	if *owner == "" {
		logger.Fatal("--owner is required")
	}
	if *file == "" {
		logger.Fatal("--file is required")
	}
	if *kind != "trades" && *kind != "funding" {
		logger.Fatalf("unknown --kind %q (want trades or funding)", *kind)
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for a dry run)")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatalf("read %s: %v", *file, err)
	}

	ctx := context.Background()

	var (
		tradeStore   storage.TradeStore
		fundingStore storage.FundingStore
		summaryStore storage.MonthlySummaryStore
		cleanup      = func() {}
	)

	if *useMemory {
		tradeStore = memory.NewTradeStore()
		fundingStore = memory.NewFundingStore()
		summaryStore = memory.NewMonthlySummaryStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("run postgres migrations: %v", err)
		}

		chConn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			pool.Close()
			logger.Fatalf("run clickhouse migrations: %v", err)
		}

		tradeStore = pgstore.NewTradeStore(pool)
		fundingStore = pgstore.NewFundingStore(pool)
		summaryStore = chstore.NewMonthlySummaryStore(chConn)
		cleanup = func() {
			chConn.Close()
			pool.Close()
		}
	}
	defer cleanup()

	aggregator := metrics.NewAggregator(tradeStore, fundingStore, summaryStore)
	importer := ingestion.NewImporter(tradeStore, fundingStore, aggregator)

	var count int
	switch *kind {
	case "trades":
		count, err = importer.ImportTrades(ctx, *owner, *file, string(data))
	case "funding":
		count, err = importer.ImportFunding(ctx, *owner, *file, string(data))
	}
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	logger.Printf("Imported %d %s records for owner %s", count, *kind, *owner)

	summaries, err := aggregator.ComputeMonthly(ctx, *owner)
	if err != nil {
		logger.Fatalf("compute monthly summary: %v", err)
	}
	fmt.Print(reporting.RenderMonthlyMarkdown(summaries))
}
