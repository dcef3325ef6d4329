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
//  2. file (YAML) if RADAR_CONFIG is set
//  3. env (prefix RADAR_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("RADAR_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RADAR_ADDR, RADAR_SOURCE_LIMIT, ...
	// Map env keys like RADAR_SOURCE_LIMIT -> source_limit (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	// List-typed keys accept comma-separated values, e.g.
	// RADAR_SOURCES=codeforces,atcoder.
	envProvider := env.ProviderWithValue("RADAR_", ".", func(s, v string) (string, interface{}) {
		key := strings.TrimPrefix(strings.ToLower(s), "radar_")
		if key == "sources" {
			return key, splitList(v)
		}
		return key, v
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if cfg.SourceLimit <= 0 {
		return fmt.Errorf("%w: source_limit must be positive", ErrInvalidConfig)
	}
	if cfg.MatchThreshold <= 0 || cfg.MatchThreshold > 100 {
		return fmt.Errorf("%w: match_threshold must be in (0, 100]", ErrInvalidConfig)
	}
	if cfg.MaxLeaderboardLimit <= 0 {
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	}
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("%w: at least one source required", ErrInvalidConfig)
	}
	return nil
}
