package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save writes the config to ~/.config/codeshell/config.json.
// Top-level keys not managed by Config are preserved.
func Save(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("config path unavailable")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	merged := make(map[string]json.RawMessage)
	if existing, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(existing, &merged); err != nil {
			return fmt.Errorf("parse existing config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	managed, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
