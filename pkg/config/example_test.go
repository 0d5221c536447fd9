package config_test

import (
	"fmt"

	"github.com/wonny/lighthorse/backend/pkg/config"
)

// Example demonstrates how to use the config package
func Example() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	fmt.Printf("Server running on port: %s\n", cfg.Port)
	fmt.Printf("Environment: %s\n", cfg.Env)
	fmt.Printf("Upstream: %s\n", cfg.Lighthorse.BaseURL)
	fmt.Printf("Cache TTL: %s\n", cfg.Lighthorse.CacheTTL)
	fmt.Printf("Redis enabled: %v\n", cfg.Redis.Enabled)
}
