// Package config provides configuration management for the fight
// win-probability service.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() (*CustomValidator, error) {
	v := validator.New()

	if err := v.RegisterValidation("environment", validateEnvironment); err != nil {
		return nil, err
	}
	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return nil, err
	}

	return &CustomValidator{validator: v}, nil
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv, err := NewValidator()
	if err != nil {
		return fmt.Errorf("failed to build validator: %w", err)
	}
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateCrossField(cfg *Config) error {
	if cfg.Database.MaxIdleConnections > cfg.Database.MaxConnections {
		return fmt.Errorf("database max_idle_connections (%d) cannot exceed max_connections (%d)",
			cfg.Database.MaxIdleConnections, cfg.Database.MaxConnections)
	}
	if cfg.Model.MinExpectedValue >= 1 {
		return fmt.Errorf("model min_expected_value (%v) must be below 1", cfg.Model.MinExpectedValue)
	}
	return nil
}

func formatValidationErrors(errs validator.ValidationErrors) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, fmt.Sprintf("%s failed on %q", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
