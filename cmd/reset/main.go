// Command reset wipes progression data: one user's document with -user, or
// every document with -all. Destructive and intended for development and
// support workflows only.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/stretchkit/progression/internal/config"
	"github.com/stretchkit/progression/internal/storage/postgres"
)

func main() {
	userID := flag.String("user", "", "reset a single user's progress document")
	all := flag.Bool("all", false, "reset every user's progress document")
	flag.Parse()

	if *userID == "" && !*all {
		log.Fatal("nothing to do: pass -user <id> or -all")
	}
	if *userID != "" && *all {
		log.Fatal("-user and -all are mutually exclusive")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.GetDBConnString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if *all {
		tag, err := pool.Exec(ctx, `DELETE FROM user_progress`)
		if err != nil {
			log.Fatalf("Failed to reset all progress: %v", err)
		}
		log.Printf("Reset complete: %d document(s) deleted.", tag.RowsAffected())
		return
	}

	store := postgres.NewStore(pool)
	if err := store.Delete(ctx, *userID); err != nil {
		log.Fatalf("Failed to reset user %s: %v", *userID, err)
	}
	log.Printf("Reset complete for user %s.", *userID)
}
