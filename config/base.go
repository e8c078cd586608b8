package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/kelseyhightower/envconfig"
)

// PathEnv names a YAML, TOML or .env file to read instead of the bare
// environment. Environment variables still override values from the file.
const PathEnv = "CONFIG_PATH"

var ErrMissingField = errors.New("missing required configuration field")

type ServerConfig struct {
	Server `yaml:"server"`
	Pow    `yaml:"pow"`
}

type ClientConfig struct {
	Client `yaml:"client"`
	Argon2 `yaml:"argon2"`
}

func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	if cfg.Server.Addr == "" {
		return nil, fmt.Errorf("%w: ADDR", ErrMissingField)
	}
	return cfg, nil
}

func LoadClientConfig() (*ClientConfig, error) {
	cfg := &ClientConfig{}
	if err := load(cfg); err != nil {
		return nil, err
	}
	if cfg.Client.ServerAddr == "" {
		return nil, fmt.Errorf("%w: SERVER_ADDR", ErrMissingField)
	}
	return cfg, nil
}

func load(cfg any) error {
	if path := os.Getenv(PathEnv); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return fmt.Errorf("failed to load configuration from %s: %w", path, err)
		}
		return nil
	}
	if err := envconfig.Process("", cfg); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	return nil
}
