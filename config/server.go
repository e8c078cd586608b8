package config

import "time"

type Server struct {
	Addr         string        `envconfig:"ADDR" required:"true" env:"ADDR" yaml:"addr"`
	Name         string        `envconfig:"NAME" default:"pow-server" env:"NAME" env-default:"pow-server" yaml:"name"`
	Deadline     time.Duration `envconfig:"DEADLINE" default:"30s" env:"DEADLINE" env-default:"30s" yaml:"deadline"`
	KeepAlive    time.Duration `envconfig:"SERVER_KEEP_ALIVE" default:"15s" env:"SERVER_KEEP_ALIVE" env-default:"15s" yaml:"keep_alive"`
	// ChallengeTTL is how long an issued nonce can be redeemed.
	ChallengeTTL time.Duration `envconfig:"CHALLENGE_TTL" default:"1m" env:"CHALLENGE_TTL" env-default:"1m" yaml:"challenge_ttl"`
	MaxLineSize  int64         `envconfig:"MAX_LINE_SIZE" default:"1024" env:"MAX_LINE_SIZE" env-default:"1024" yaml:"max_line_size"`
}
