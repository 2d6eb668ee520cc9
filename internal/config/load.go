package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/e0as/mobile-bridge/internal/log"
)

// Load reads the config file and resolves env var references immediately.
// A .env file next to the working directory is loaded first so that
// {"$env": ...} references can be satisfied without exporting variables.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err == nil {
		log.LogDebugWithFields("config", "Loaded .env file", nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := Validate(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks the resolved configuration
func Validate(config *Config) error {
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend.baseURL is required")
	}
	u, err := url.Parse(config.Backend.BaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("backend.baseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend.baseURL scheme must be http or https, got %q", u.Scheme)
	}

	if config.Provider.HostedUIOrigin != "" {
		pu, err := url.Parse(config.Provider.HostedUIOrigin)
		if err != nil || pu.Host == "" {
			return fmt.Errorf("provider.hostedUIOrigin must be an absolute URL")
		}
	}

	if config.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}

	for _, p := range config.Redirect.SuccessPaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("redirect.successPaths entries must start with /, got %q", p)
		}
	}

	for _, o := range config.Cookies.Origins {
		if o == "" {
			return fmt.Errorf("cookies.origins entries cannot be empty")
		}
	}
	for _, n := range config.Cookies.Names {
		if n == "" {
			return fmt.Errorf("cookies.names entries cannot be empty")
		}
	}

	return nil
}
