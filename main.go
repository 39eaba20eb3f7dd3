package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/riddler/assets"
	"github.com/robalobadob/riddler/internal/config"
	"github.com/robalobadob/riddler/internal/database"
	"github.com/robalobadob/riddler/internal/httpserver"
	"github.com/robalobadob/riddler/internal/riddles"
	"github.com/robalobadob/riddler/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()
	if err := database.Migrate(db, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	bank, err := riddles.FromDB(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load riddles")
	}
	stats := bank.Stats()
	log.Info().Int("entries", stats.Entries).Int("duplicates", stats.Duplicates).Msg("riddle bank ready")

	mem := store.NewMemoryStore()
	go store.RunSweeper(ctx, mem, cfg.SweepInterval, cfg.SessionIdleTTL, func(n int) {
		log.Debug().Int("removed", n).Int("live", mem.Len()).Msg("swept idle sessions")
	})

	srv := httpserver.New(mem, bank, httpserver.Options{
		ClientOrigin:      cfg.ClientOrigin,
		RequestTimeout:    cfg.RequestTimeout,
		TokenSecret:       cfg.TokenSecret,
		TokenTTL:          cfg.TokenTTL,
		CookieName:        cfg.CookieName,
		SecureCookies:     cfg.Production(),
		DebugUser:         cfg.DebugUser,
		DebugPasswordHash: cfg.DebugPasswordHash,
	})
	log.Info().Str("port", cfg.Port).Msg("starting riddler server")
	if err := srv.ListenAndServe(ctx, ":"+cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
