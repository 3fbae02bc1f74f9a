package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/rhymer/pkg/rhymer/internalerr"
)

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rhymer.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RHYMER_CONFIG", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generate.LineMin != 6 || cfg.Generate.LineMax != 8 || cfg.Generate.MaxTokens != 24 {
		t.Errorf("unexpected generate defaults %+v", cfg.Generate)
	}
	if cfg.Index.Path != "rap_lyrics.ind" || cfg.Corpus.Path != "rap_lyrics.txt" {
		t.Errorf("unexpected path defaults %+v %+v", cfg.Index, cfg.Corpus)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults %+v", cfg.Log)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), `
corpus:
  path: "lyrics.txt"
index:
  path: "lyrics.db"
generate:
  line_min: 4
  line_max: 10
  max_tokens: 30
  seed: 99
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Corpus.Path != "lyrics.txt" || cfg.Index.Path != "lyrics.db" {
		t.Errorf("paths not read: %+v %+v", cfg.Corpus, cfg.Index)
	}
	if cfg.Generate.LineMin != 4 || cfg.Generate.LineMax != 10 || cfg.Generate.Seed != 99 {
		t.Errorf("generate not read: %+v", cfg.Generate)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("log not read: %+v", cfg.Log)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeYAML(t, t.TempDir(), "index:\n  path: from-yaml.ind\n")
	t.Setenv("RHYMER_INDEX_PATH", "from-env.ind")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Index.Path != "from-env.ind" {
		t.Errorf("Index.Path = %q, want from-env.ind", cfg.Index.Path)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("explicit missing file should fail")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Index:    IndexConfig{Path: "x.ind"},
			Generate: GenerateConfig{LineMin: 6, LineMax: 8, MaxTokens: 24},
			Log:      LogConfig{Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"line_min zero", func(c *Config) { c.Generate.LineMin = 0 }},
		{"max below min", func(c *Config) { c.Generate.LineMax = 5 }},
		{"cap not above max", func(c *Config) { c.Generate.MaxTokens = 8 }},
		{"no index path", func(c *Config) { c.Index.Path = " " }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("got %v, want ErrInvalidConfig", err)
			}
		})
	}
}
