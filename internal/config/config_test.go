package config

import (
	"errors"
	"testing"

	"github.com/cwbudde/ircab/dsp/core"
)

var envVars = []string{
	"IRCAB_SAMPLE_RATE", "IRCAB_BLOCK_SIZE", "IRCAB_INPUT_GAIN_DB",
	"IRCAB_FILTER_ENABLED", "IRCAB_OUTPUT_CHANNELS", "IRCAB_ENGINE",
	"IRCAB_IR_PATH", "IRCAB_LOG_LEVEL", "IRCAB_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.SampleRate != 48000 {
		t.Errorf("SampleRate = %v, want 48000", cfg.SampleRate)
	}
	if cfg.BlockSize != 4 {
		t.Errorf("BlockSize = %d, want 4", cfg.BlockSize)
	}
	if cfg.InputGainDB != 0 {
		t.Errorf("InputGainDB = %v, want 0", cfg.InputGainDB)
	}
	if !cfg.FilterEnabled {
		t.Error("FilterEnabled = false, want true")
	}
	if cfg.OutputChannels != 2 {
		t.Errorf("OutputChannels = %d, want 2", cfg.OutputChannels)
	}
	if cfg.Engine != "auto" || cfg.IRPath != "" {
		t.Errorf("Engine = %q IRPath = %q", cfg.Engine, cfg.IRPath)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("LogLevel = %s LogFormat = %s", cfg.LogLevel, cfg.LogFormat)
	}

	if got, want := cfg.Processor(), core.DefaultProcessorConfig(); got != want {
		t.Errorf("Processor() = %#v, want %#v", got, want)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRCAB_SAMPLE_RATE", "44100")
	t.Setenv("IRCAB_BLOCK_SIZE", "64")
	t.Setenv("IRCAB_INPUT_GAIN_DB", "-6")
	t.Setenv("IRCAB_FILTER_ENABLED", "false")
	t.Setenv("IRCAB_OUTPUT_CHANNELS", "1")
	t.Setenv("IRCAB_ENGINE", "direct")
	t.Setenv("IRCAB_IR_PATH", "/tmp/cab.wav")
	t.Setenv("IRCAB_LOG_LEVEL", "debug")
	t.Setenv("IRCAB_LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	p := cfg.Processor()
	if p.SampleRate != 44100 || p.BlockSize != 64 || p.FilterEnabled || p.OutputChannels != 1 {
		t.Errorf("Processor() = %#v", p)
	}
	if !core.NearlyEqual(p.InputGain, 0.501187, 1e-5) {
		t.Errorf("InputGain = %v, want ~0.501", p.InputGain)
	}
	if cfg.IRPath != "/tmp/cab.wav" || cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.FilterOptions()) != 1 {
		t.Errorf("FilterOptions() = %d options, want 1", len(cfg.FilterOptions()))
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRCAB_BLOCK_SIZE", "four")
	t.Setenv("IRCAB_FILTER_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BlockSize != 4 || !cfg.FilterEnabled {
		t.Errorf("BlockSize = %d FilterEnabled = %v, want defaults", cfg.BlockSize, cfg.FilterEnabled)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero rate", func(c *Config) { c.SampleRate = 0 }},
		{"zero block", func(c *Config) { c.BlockSize = 0 }},
		{"huge block", func(c *Config) { c.BlockSize = core.MaxBlockSize * 2 }},
		{"no outputs", func(c *Config) { c.OutputChannels = 0 }},
		{"gain too high", func(c *Config) { c.InputGainDB = 60 }},
		{"bad engine", func(c *Config) { c.Engine = "wavelet" }},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("Validate() = nil, want error")
			}
		})
	}
}

func TestValidate_ProcessorError(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRCAB_OUTPUT_CHANNELS", "0")

	if _, err := Load(); !errors.Is(err, core.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want %v", err, core.ErrInvalidConfig)
	}
}
