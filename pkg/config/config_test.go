package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TARGET_LABEL", "Card Alerts")
	t.Setenv("SPREADSHEET_NAME", "Budget")
	t.Setenv("OLLAMA_LLM_MODEL", "gemma3:4b")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "Card Alerts", cfg.TargetLabel)
	assert.Equal(t, "Budget", cfg.SpreadsheetName)
	assert.Equal(t, "gemma3:4b", cfg.OllamaModel)

	// Credential paths fall back to defaults when unset.
	assert.Equal(t, DefaultCredentialsFile, cfg.CredentialsFile)
	assert.Equal(t, DefaultTokenFile, cfg.TokenFile)
}

func TestLoadCredentialPathOverrides(t *testing.T) {
	t.Setenv("GOOGLE_CREDENTIALS_FILE", "/etc/agent/secret.json")
	t.Setenv("GOOGLE_TOKEN_FILE", "/var/lib/agent/token.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/etc/agent/secret.json", cfg.CredentialsFile)
	assert.Equal(t, "/var/lib/agent/token.json", cfg.TokenFile)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{TargetLabel: "Card Alerts", SpreadsheetName: "Budget"},
		},
		{
			name:    "missing label",
			cfg:     Config{SpreadsheetName: "Budget"},
			wantErr: "TARGET_LABEL",
		},
		{
			name:    "missing spreadsheet",
			cfg:     Config{TargetLabel: "Card Alerts"},
			wantErr: "SPREADSHEET_NAME",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestValidateModel(t *testing.T) {
	cfg := Config{}
	require.Error(t, cfg.ValidateModel())

	cfg.OllamaModel = "gemma3:4b"
	assert.NoError(t, cfg.ValidateModel())
}
