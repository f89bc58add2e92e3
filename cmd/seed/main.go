// The seed command loads the built-in demo catalog into a real database,
// so a fresh deployment starts with content instead of an empty store.
// Records are inserted with fresh ids and without the demo flag; running
// it against a populated database adds duplicates, so it is meant for
// first-time setup.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/meteoryte/banana-oracle/internal/demo"
	sqliteRepo "github.com/meteoryte/banana-oracle/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", "banana.db", "path to the SQLite database")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := sqliteRepo.New(*dbPath)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bananas := db.Bananas()
	for _, b := range demo.All() {
		b.ID = ""
		b.Demo = false
		if err := bananas.Create(ctx, &b); err != nil {
			logger.Error("failed to seed banana",
				slog.String("name", b.Name),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
		logger.Info("seeded banana", slog.String("id", b.ID), slog.String("name", b.Name))
	}

	logger.Info("seeding complete", slog.Int("count", len(demo.All())))
}
