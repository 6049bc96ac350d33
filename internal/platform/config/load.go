package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from an optional YAML file at path, then applies
// environment overrides. A missing file is not an error; the defaults plus
// environment are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Fall through to env-only configuration.
		case err != nil:
			return Config{}, fmt.Errorf("open config file: %w", err)
		default:
			defer f.Close()
			cfg, err = loadReader(f, cfg)
			if err != nil {
				return Config{}, err
			}
		}
	}

	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	if !cfg.Storage.Backend.IsValid() {
		return Config{}, fmt.Errorf("invalid storage backend %q", cfg.Storage.Backend)
	}
	if cfg.Party.MinSize < 0 || cfg.Party.MaxSize < cfg.Party.MinSize {
		return Config{}, fmt.Errorf("invalid party size bounds %d..%d", cfg.Party.MinSize, cfg.Party.MaxSize)
	}
	return cfg, nil
}

// loadReader decodes YAML over the provided base configuration.
func loadReader(r io.Reader, base Config) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	cfg := base
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return base, nil
		}
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}
	return cfg, nil
}
