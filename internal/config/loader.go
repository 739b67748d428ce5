package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if BIRDIE_CONFIG is set
//  3. env (prefix BIRDIE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("BIRDIE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: BIRDIE_ADDR, BIRDIE_POLL_INTERVAL_SECONDS, ...
	// Map env keys like BIRDIE_DEDUPE_SIZE -> dedupe_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("BIRDIE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "birdie_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.PollIntervalSeconds < 1:
		return nil, fmt.Errorf("%w: poll_interval_seconds must be positive", ErrInvalidConfig)
	case cfg.DefaultPar < 1:
		return nil, fmt.Errorf("%w: default_par must be positive", ErrInvalidConfig)
	}
	return &cfg, nil
}
