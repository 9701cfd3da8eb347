// Package config loads CLI configuration for jsonmend from a YAML file and
// the environment.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	kenv "github.com/knadh/koanf/providers/env"
	kfile "github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds the repair options the CLI passes through to the library.
type Config struct {
	UnescapedUnicode      bool   `koanf:"unescaped_unicode"`
	OmitEmptyValues       bool   `koanf:"omit_empty_values"`
	OmitIncompleteStrings bool   `koanf:"omit_incomplete_strings"`
	LogLevel              string `koanf:"log_level"`
}

// Load loads configuration from path or default locations.
//
// Priority:
//  1. JSONMEND_CONFIG_PATH if set
//  2. ./jsonmend.yaml
//  3. JSONMEND_* environment variables override file values
//
// A missing config file is not an error; defaults apply.
func Load() (*Config, error) {
	// Best-effort .env loading for local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	path := os.Getenv("JSONMEND_CONFIG_PATH")
	if path == "" {
		path = "jsonmend.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(kfile.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment overrides: JSONMEND_OMIT_EMPTY_VALUES=true etc.
	if err := k.Load(kenv.Provider("JSONMEND_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "JSONMEND_"))
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
