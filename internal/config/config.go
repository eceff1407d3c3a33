// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/cwbudde/ircab/dsp/core"
	"github.com/cwbudde/ircab/dsp/ir"
)

// Config holds all application configuration.
type Config struct {
	// Engine settings
	SampleRate     float64
	BlockSize      int
	InputGainDB    float64
	FilterEnabled  bool
	OutputChannels int
	Engine         string

	// IRPath is an optional IR file; empty selects the built-in IR.
	IRPath string

	// Logging settings
	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment variables with defaults and
// validates it.
func Load() (*Config, error) {
	cfg := &Config{
		SampleRate:     getEnvFloat("IRCAB_SAMPLE_RATE", 48000),
		BlockSize:      getEnvInt("IRCAB_BLOCK_SIZE", 4),
		InputGainDB:    getEnvFloat("IRCAB_INPUT_GAIN_DB", 0),
		FilterEnabled:  getEnvBool("IRCAB_FILTER_ENABLED", true),
		OutputChannels: getEnvInt("IRCAB_OUTPUT_CHANNELS", 2),
		Engine:         getEnvString("IRCAB_ENGINE", "auto"),
		IRPath:         getEnvString("IRCAB_IR_PATH", ""),
		LogLevel:       getEnvString("IRCAB_LOG_LEVEL", "info"),
		LogFormat:      getEnvString("IRCAB_LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if err := c.Processor().Validate(); err != nil {
		return err
	}

	if c.InputGainDB > 40 {
		return errors.New("IRCAB_INPUT_GAIN_DB must be at most 40")
	}

	if _, err := ir.ParseEngine(c.Engine); err != nil {
		return fmt.Errorf("IRCAB_ENGINE: %w", err)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return errors.New("IRCAB_LOG_LEVEL must be one of: debug, info, warn, error")
	}

	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[c.LogFormat] {
		return errors.New("IRCAB_LOG_FORMAT must be one of: text, json")
	}

	return nil
}

// Processor returns the processor configuration described by c.
func (c *Config) Processor() core.ProcessorConfig {
	return core.ProcessorConfig{
		SampleRate:     c.SampleRate,
		BlockSize:      c.BlockSize,
		InputGain:      core.DBToLinear(c.InputGainDB),
		FilterEnabled:  c.FilterEnabled,
		OutputChannels: c.OutputChannels,
	}
}

// FilterOptions returns the IR construction options described by c.
func (c *Config) FilterOptions() []ir.Option {
	engine, err := ir.ParseEngine(c.Engine)
	if err != nil {
		engine = ir.EngineAuto
	}
	return []ir.Option{ir.WithEngine(engine)}
}

// getEnvString returns the environment variable value or a default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the environment variable as an int or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat returns the environment variable as a float64 or a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool returns the environment variable as a bool or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
