package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
)

// Load reads configuration from a YAML file and environment variables.
// Priority: ENV > YAML > defaults (via env-default tags).
// An empty path falls back to RHYMER_CONFIG, then "./rhymer.yaml". A missing
// file is only an error when the path was given explicitly.
func Load(path string) (*Config, error) {
	var cfg Config

	explicitPath := path != ""
	if !explicitPath {
		path = os.Getenv("RHYMER_CONFIG")
		explicitPath = path != ""
	}
	if !explicitPath {
		path = "./rhymer.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		// No file, load from ENV + defaults only.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks the line bounds and required paths.
func (c *Config) Validate() error {
	g := c.Generate
	if g.LineMin < 1 {
		return fmt.Errorf("generate.line_min must be >= 1 (got %d): %w", g.LineMin, internalerr.ErrInvalidConfig)
	}
	if g.LineMax < g.LineMin {
		return fmt.Errorf("generate.line_max must be >= line_min (got %d < %d): %w", g.LineMax, g.LineMin, internalerr.ErrInvalidConfig)
	}
	if g.MaxTokens <= g.LineMax {
		return fmt.Errorf("generate.max_tokens must be > line_max (got %d): %w", g.MaxTokens, internalerr.ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Index.Path) == "" {
		return fmt.Errorf("index.path is required: %w", internalerr.ErrInvalidConfig)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q): %w", c.Log.Format, internalerr.ErrInvalidConfig)
	}
	return nil
}
