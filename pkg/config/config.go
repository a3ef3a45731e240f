// Package config loads the application configuration from the environment.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Default credential file locations, relative to the working directory.
const (
	DefaultCredentialsFile = "data/google_credentials.json"
	DefaultTokenFile       = "data/google_token.json"
)

// Config holds the application configuration loaded from environment
// variables. It is constructed once at process start and passed explicitly
// to every component that needs it.
type Config struct {
	// TargetLabel is the Gmail label carrying transaction notifications.
	// Environment variable: TARGET_LABEL
	TargetLabel string `koanf:"TARGET_LABEL"`

	// SpreadsheetName is the Drive name of the budget spreadsheet.
	// Environment variable: SPREADSHEET_NAME
	SpreadsheetName string `koanf:"SPREADSHEET_NAME"`

	// OllamaModel is the model identifier for the local completion runtime.
	// Environment variable: OLLAMA_LLM_MODEL
	OllamaModel string `koanf:"OLLAMA_LLM_MODEL"`

	// CredentialsFile is the path to the Google OAuth client secret JSON.
	// Environment variable: GOOGLE_CREDENTIALS_FILE
	CredentialsFile string `koanf:"GOOGLE_CREDENTIALS_FILE"`

	// TokenFile is the path where the OAuth token is persisted across runs.
	// Environment variable: GOOGLE_TOKEN_FILE
	TokenFile string `koanf:"GOOGLE_TOKEN_FILE"`
}

// Load reads configuration from a .env file (if present) and the process
// environment. Missing required settings are reported by Validate, not here,
// so diagnostic commands can still load a partial configuration.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = DefaultCredentialsFile
	}
	if cfg.TokenFile == "" {
		cfg.TokenFile = DefaultTokenFile
	}

	return &cfg, nil
}

// Validate checks the settings the expense batch requires.
func (c *Config) Validate() error {
	if c.TargetLabel == "" {
		return errors.New("TARGET_LABEL environment variable is required")
	}
	if c.SpreadsheetName == "" {
		return errors.New("SPREADSHEET_NAME environment variable is required")
	}
	return nil
}

// ValidateModel checks the settings the completion wrapper requires.
func (c *Config) ValidateModel() error {
	if c.OllamaModel == "" {
		return errors.New("OLLAMA_LLM_MODEL environment variable is required")
	}
	return nil
}
