package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/Seikonolff/map-to-seventy/internal/pkg/config"
	"github.com/Seikonolff/map-to-seventy/migrations"
)

const createVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	name       TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down|status>")
	}
	_ = godotenv.Load()

	cfg, err := config.Load("routemap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, createVersionTable); err != nil {
		log.Fatalf("create schema_migrations: %v", err)
	}

	all, err := migrations.All()
	if err != nil {
		log.Fatalf("load migrations: %v", err)
	}
	applied, err := appliedSet(ctx, pool)
	if err != nil {
		log.Fatalf("read schema_migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		for _, m := range all {
			if applied[m.Name] {
				continue
			}
			if err := apply(ctx, pool, m.Up, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name); err != nil {
				log.Fatalf("up %s: %v", m.Name, err)
			}
			fmt.Printf("UP    %s\n", m.Name)
		}
	case "down":
		// Roll back the most recent applied migration only.
		for i := len(all) - 1; i >= 0; i-- {
			m := all[i]
			if !applied[m.Name] {
				continue
			}
			if err := apply(ctx, pool, m.Down, `DELETE FROM schema_migrations WHERE name = $1`, m.Name); err != nil {
				log.Fatalf("down %s: %v", m.Name, err)
			}
			fmt.Printf("DOWN  %s\n", m.Name)
			break
		}
	case "status":
		for _, m := range all {
			state := "pending"
			if applied[m.Name] {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, m.Name)
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}

func appliedSet(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT name FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

// apply runs sql and the bookkeeping statement in one transaction.
func apply(ctx context.Context, pool *pgxpool.Pool, sql, record, name string) error {
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, sql); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, record, name)
		return err
	})
}
