package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL string

	// Processor configuration
	ProcessorBaseURL string
	ProcessorAPIKey  string

	// Settlement configuration
	PaydayWorkers int    // concurrent participant settlements, bounded by processor rate limits
	MinimumCharge string // smallest charge the processor accepts, e.g. "0.50"

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		ProcessorBaseURL: os.Getenv("PROCESSOR_BASE_URL"),
		ProcessorAPIKey:  os.Getenv("PROCESSOR_API_KEY"),

		// Settlement settings with defaults
		PaydayWorkers: 4,
		MinimumCharge: "0.50",

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if workers := os.Getenv("PAYDAY_WORKERS"); workers != "" {
		if parsedWorkers, err := strconv.Atoi(workers); err == nil && parsedWorkers > 0 {
			config.PaydayWorkers = parsedWorkers
		}
	}
	if minimum := os.Getenv("MINIMUM_CHARGE"); minimum != "" {
		config.MinimumCharge = minimum
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.ProcessorBaseURL == "" {
			return nil, fmt.Errorf("PROCESSOR_BASE_URL is required")
		}
		if config.ProcessorAPIKey == "" {
			return nil, fmt.Errorf("PROCESSOR_API_KEY is required")
		}
	}

	return config, nil
}
