package config

import "github.com/caarlos0/env/v11"

type ClientConfig struct {
	ServerURL string `env:"SERVER_URL" envDefault:"http://localhost:8080"`
	WSURL     string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	GameID    string `env:"GAME_ID,required,notEmpty"`

	PlayerHandle string `env:"PLAYER_HANDLE"`
	SeatingPos   int    `env:"SEATING_POS" envDefault:"0"`
	Wallet       int64  `env:"WALLET_PENCE" envDefault:"10000"`

	StatePath       string `env:"STATE_PATH" envDefault:"table-state.json"`
	HTTPTimeoutSecs int    `env:"HTTP_TIMEOUT_SECONDS" envDefault:"10"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	err := env.Parse(&cfg)
	return cfg, err
}
