package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"

	"github.com/ignite/audience-hub/internal/backfill"
	"github.com/ignite/audience-hub/internal/config"
	"github.com/ignite/audience-hub/internal/pkg/distlock"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	dir := flag.String("dir", "migrations", "directory containing .sql migration files")
	listOnly := flag.Bool("list", false, "list audience tables and exit")
	backfillEvents := flag.Bool("backfill-events", false, "reconstruct the subscribe event log from member snapshots")
	revertEvents := flag.Bool("revert-events", false, "delete the entire subscribe event log")
	maxBindParams := flag.Int("max-bind-params", 0, "storage bind-parameter ceiling for batch inserts (0 = value from config)")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	dsn := cfg.Database.URL
	if dsn == "" {
		log.Fatal("database url is required (config database.url or DATABASE_URL)")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("Connected to database")

	ctx := context.Background()

	if *listOnly {
		listTables(db)
		return
	}

	// One migrator at a time, across all hosts.
	lock := distlock.New("audience-hub-migrate")
	ok, err := lock.Acquire(ctx, db)
	if err != nil {
		log.Fatalf("acquire migration lock: %v", err)
	}
	if !ok {
		log.Fatal("another migration is already running")
	}
	defer lock.Release(ctx)

	bindParams := resolveMaxBindParams(*maxBindParams, cfg.Database.MaxBindParams)

	switch {
	case *backfillEvents:
		n, err := backfill.New(db, bindParams).Forward(ctx)
		if err != nil {
			log.Fatalf("backfill subscribe events: %v", err)
		}
		log.Printf("Backfill complete: %d events written", n)
	case *revertEvents:
		n, err := backfill.New(db, bindParams).Backward(ctx)
		if err != nil {
			log.Fatalf("revert subscribe events: %v", err)
		}
		log.Printf("Revert complete: %d events deleted", n)
	default:
		runMigrations(db, *dir)
	}
}

// resolveMaxBindParams picks the storage bind-parameter ceiling: the flag
// when given, otherwise the config value.
func resolveMaxBindParams(flagVal, cfgVal int) int {
	if flagVal > 0 {
		return flagVal
	}
	return cfgVal
}

func listTables(db *sql.DB) {
	rows, err := db.Query("SELECT tablename FROM pg_tables WHERE schemaname='public' AND (tablename LIKE 'members%' OR tablename = 'labels') ORDER BY tablename")
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var t string
		rows.Scan(&t)
		fmt.Println(" ", t)
		n++
	}
	fmt.Printf("Total: %d tables\n", n)
}

func runMigrations(db *sql.DB, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Fatalf("read migrations dir %s: %v", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	var okCount, errCount int
	for _, f := range files {
		path := filepath.Join(dir, f)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read %s: %v", path, err)
		}
		content := string(data)
		if strings.TrimSpace(content) == "" {
			continue
		}
		fmt.Printf("  %s ... ", f)

		tx, err := db.Begin()
		if err != nil {
			fmt.Printf("BEGIN ERROR: %v\n", err)
			errCount++
			continue
		}
		if _, err := tx.Exec(content); err != nil {
			tx.Rollback()
			fmt.Printf("ERROR: %v\n", err)
			errCount++
		} else {
			tx.Commit()
			fmt.Println("OK")
			okCount++
		}
	}
	log.Printf("Done: %d OK, %d errors", okCount, errCount)
	log.Println("Migrations complete")
}
