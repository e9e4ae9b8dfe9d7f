package config

import "github.com/caarlos0/env/v11"

type SimConfig struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	GameID   string `env:"GAME_ID" envDefault:"local-table"`

	AntePence     int64 `env:"ANTE_PENCE" envDefault:"50"`
	BigBlindPence int64 `env:"BIG_BLIND_PENCE" envDefault:"200"`
}

func LoadSim() (SimConfig, error) {
	var cfg SimConfig
	err := env.Parse(&cfg)
	return cfg, err
}
