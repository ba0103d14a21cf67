// internal/config/load.go
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML (default) or TOML (.toml) config file.
// Unknown keys are rejected. Load does not validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return parseTOML(data)
	}
	return parseYAML(data)
}

func parseYAML(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &cfg, nil
}

func parseTOML(data []byte) (*Config, error) {
	var cfg Config

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse toml config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse toml config: unknown key %q", undecoded[0].String())
	}
	return &cfg, nil
}
