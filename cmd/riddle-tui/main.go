// Command riddle-tui plays riddles in the terminal.
//
// Riddles come from the embedded list, or from a SQLite file when -db is set
// (seeded from the embedded list on first use). Logs go to -log, if given,
// because the terminal belongs to the game.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/riddler/assets"
	"github.com/robalobadob/riddler/internal/database"
	"github.com/robalobadob/riddler/internal/riddles"
	"github.com/robalobadob/riddler/internal/session"
	"github.com/robalobadob/riddler/internal/tui"
)

func main() {
	dbPath := flag.String("db", "", "optional SQLite file holding the riddles")
	logPath := flag.String("log", "", "optional log file")
	flag.Parse()

	log.Logger = zerolog.Nop()
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.Logger = zerolog.New(f).With().Timestamp().Logger()
	}

	bank, err := loadBank(context.Background(), *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading riddles: %v\n", err)
		os.Exit(1)
	}

	sess, err := session.New(uuid.NewString(), bank)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting round: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("session", sess.ID()).Int("riddles", bank.Len()).Msg("tui started")

	if err := tui.Run(sess); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func loadBank(ctx context.Context, dbPath string) (*riddles.Bank, error) {
	if dbPath == "" {
		entries, err := riddles.Embedded()
		if err != nil {
			return nil, err
		}
		return riddles.New(entries)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		return nil, err
	}
	return riddles.FromDB(ctx, db)
}
