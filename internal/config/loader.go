// Package config provides configuration management for the fight
// win-probability service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment
// variables. Environment variable placeholders (${VAR_NAME}) in the YAML
// file are expanded before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("FIGHTPROB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults fills value defaults for optional model knobs so a
// minimal config file stays valid.
func applyDefaults(cfg *Config) {
	if cfg.Model.CalibrationMethod == "" {
		cfg.Model.CalibrationMethod = "isotonic"
	}
	if cfg.Model.CalibrationMinSamples == 0 {
		cfg.Model.CalibrationMinSamples = 3
	}
	if cfg.Model.ConfidenceDelta == 0 {
		cfg.Model.ConfidenceDelta = 0.05
	}
	if cfg.Model.MaxKellyFraction == 0 {
		cfg.Model.MaxKellyFraction = 0.1
	}
	if cfg.Elo.KBase == 0 {
		cfg.Elo.KBase = 24
	}
	if cfg.Jobs.RefreshDays == 0 {
		cfg.Jobs.RefreshDays = 7
	}
}
