package config

import "powaccount/pkg/pow/argon2"

// Pow holds the parameters the server announces. Defaults give 5 leading zero
// hex characters of a single BLAKE2s round.
type Pow struct {
	Difficulty  uint   `envconfig:"POW_DIFFICULTY" default:"5" env:"POW_DIFFICULTY" env-default:"5" yaml:"difficulty"`
	Mode        string `envconfig:"POW_MODE" default:"single" env:"POW_MODE" env-default:"single" yaml:"mode"`
	Algorithm   string `envconfig:"POW_ALGORITHM" default:"blake2s" env:"POW_ALGORITHM" env-default:"blake2s" yaml:"algorithm"`
	Granularity string `envconfig:"POW_GRANULARITY" default:"nibble" env:"POW_GRANULARITY" env-default:"nibble" yaml:"granularity"`
	Argon2      `yaml:"argon2"`
}

// Argon2 only matters when the algorithm is argon2id. Client and server must
// use the same values.
type Argon2 struct {
	Time    uint32 `envconfig:"POW_ARGON2_TIME" default:"1" env:"POW_ARGON2_TIME" env-default:"1" yaml:"time"`
	Memory  uint32 `envconfig:"POW_ARGON2_MEMORY" default:"8192" env:"POW_ARGON2_MEMORY" env-default:"8192" yaml:"memory"`
	Threads uint8  `envconfig:"POW_ARGON2_THREADS" default:"1" env:"POW_ARGON2_THREADS" env-default:"1" yaml:"threads"`
	Salt    string `envconfig:"POW_ARGON2_SALT" default:"powaccount/argon2id/v1" env:"POW_ARGON2_SALT" env-default:"powaccount/argon2id/v1" yaml:"salt"`
}

func (a Argon2) Params() argon2.Params {
	return argon2.Params{
		Time:    a.Time,
		Memory:  a.Memory,
		Threads: a.Threads,
		Salt:    []byte(a.Salt),
	}
}
