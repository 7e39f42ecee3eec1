// Command proxypoolctl is the one-shot operator CLI companion to
// proxypoold: schema migrations, a point-in-time stats dump, and bulk
// export, run against the same Postgres instance without a long-lived
// process.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"proxypool/internal/config"
	"proxypool/internal/export"
	"proxypool/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()
	db, err := store.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	switch os.Args[1] {
	case "migrate":
		runMigrate(ctx, db.Pool(), os.Args[2:])
	case "stats":
		runStats(ctx, db)
	case "export":
		runExport(ctx, db, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: proxypoolctl <migrate up|down|status | stats | export [csv|xlsx|pdf]>")
}

func runMigrate(ctx context.Context, pool *pgxpool.Pool, args []string) {
	if len(args) == 0 {
		log.Fatal("usage: proxypoolctl migrate <up|down|status>")
	}

	migrator := store.NewMigrator(pool)
	var err error
	switch args[0] {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "status":
		err = migrator.Status(ctx)
	default:
		log.Fatalf("unknown migrate subcommand: %s", args[0])
	}
	if err != nil {
		log.Fatalf("migrate %s failed: %v", args[0], err)
	}
}

func runStats(ctx context.Context, db *store.PostgresDB) {
	repo := store.NewPostgresRepository(db)
	stats, err := repo.Stats(ctx)
	if err != nil {
		log.Fatalf("failed to fetch stats: %v", err)
	}
	fmt.Printf("total=%d active=%d pending=%d inactive=%d protocols=%d countries=%d avg_speed=%.3f\n",
		stats.Total, stats.Active, stats.Pending, stats.Inactive,
		stats.DistinctProtocols, stats.DistinctCountries, stats.AvgSpeed)
}

func runExport(ctx context.Context, db *store.PostgresDB, args []string) {
	format := "csv"
	if len(args) > 0 {
		format = args[0]
	}

	repo := store.NewPostgresRepository(db)
	proxies, err := repo.IterActive(ctx, store.ActiveFilter{}, 10000)
	if err != nil {
		log.Fatalf("failed to fetch active proxies: %v", err)
	}

	switch format {
	case "csv":
		err = export.WriteActiveCSV(os.Stdout, proxies)
	case "xlsx":
		err = export.WriteActiveXLSX(os.Stdout, proxies)
	case "pdf":
		var stats store.Stats
		stats, err = repo.Stats(ctx)
		if err == nil {
			err = export.WriteStatsPDF(os.Stdout, stats, proxies)
		}
	default:
		log.Fatalf("unsupported export format: %s", format)
	}
	if err != nil {
		log.Fatalf("export failed: %v", err)
	}
}
