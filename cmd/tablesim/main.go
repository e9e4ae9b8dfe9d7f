package main

import (
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"holdem-client/internal/config"
	"holdem-client/internal/logging"
	"holdem-client/internal/tablesim"
)

// tablesim is a single-table server speaking the same session, handrank and
// websocket protocol the table client expects, for local play and testing.
func main() {
	_ = godotenv.Load()

	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	cfg, err := config.LoadSim()
	if err != nil {
		log.Fatal().Err(err).Msg("load sim config failed")
	}

	srv := tablesim.NewServer(cfg)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Str("gameId", cfg.GameID).Msg("table sim listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}
