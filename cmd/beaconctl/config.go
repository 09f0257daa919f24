package main

import (
	"strings"

	"github.com/danmuck/beacon/internal/config"
)

// loadServeConfig reads path, or the defaults when path is empty, and applies
// flag overrides on top.
func loadServeConfig(path, addr string) (config.Config, error) {
	cfg := config.Default()
	if strings.TrimSpace(path) != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if v := strings.TrimSpace(addr); v != "" {
		cfg.Inspect.Addr = v
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
