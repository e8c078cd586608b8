package config

import "time"

type Client struct {
	ServerAddr     string        `envconfig:"SERVER_ADDR" required:"true" env:"SERVER_ADDR" yaml:"server_addr"`
	Name           string        `envconfig:"NAME" default:"pow-client" env:"NAME" env-default:"pow-client" yaml:"name"`
	Sessions       int           `envconfig:"SESSIONS" default:"1" env:"SESSIONS" env-default:"1" yaml:"sessions"`
	Workers        int           `envconfig:"WORKERS" default:"0" env:"WORKERS" env-default:"0" yaml:"workers"`
	MaxTrials      uint64        `envconfig:"MAX_TRIALS" default:"0" env:"MAX_TRIALS" env-default:"0" yaml:"max_trials"`
	MaxDifficulty  uint32        `envconfig:"MAX_DIFFICULTY" default:"8" env:"MAX_DIFFICULTY" env-default:"8" yaml:"max_difficulty"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"60s" env:"REQUEST_TIMEOUT" env-default:"60s" yaml:"request_timeout"`
}
