package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/imalan123/personal-llm-agent/pkg/client"
	"github.com/imalan123/personal-llm-agent/pkg/config"
)

// runSetup handles the interactive OAuth authorization flow.
func runSetup(logger *slog.Logger, force bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Println("=== Expensemail Setup ===")
	fmt.Println()

	if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
		return fmt.Errorf("credentials file not found: %s\n\nTo get your credentials:\n"+
			"1. Go to https://console.cloud.google.com/apis/credentials\n"+
			"2. Create an OAuth 2.0 Client ID (Desktop application)\n"+
			"3. Download the JSON file and save it as '%s'", cfg.CredentialsFile, cfg.CredentialsFile)
	}

	if !force {
		if _, err := os.Stat(cfg.TokenFile); err == nil {
			fmt.Printf("Already authenticated! Token file exists: %s\n", cfg.TokenFile)
			fmt.Println()
			fmt.Println("To re-authenticate, run: expensemail setup --force")
			return nil
		}
	}

	if force {
		if err := os.Remove(cfg.TokenFile); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove existing token", "error", err)
		}
		fmt.Println("Forcing re-authentication...")
		fmt.Println()
	}

	fmt.Println("This will set up OAuth authentication with Google.")
	fmt.Println()
	fmt.Println("Required permissions:")
	fmt.Println("  - Gmail: Read and delete emails (processed notifications are removed)")
	fmt.Println("  - Sheets: Read and write spreadsheets")
	fmt.Println("  - Drive: Locate the budget spreadsheet by name (read-only)")
	fmt.Println()
	fmt.Println("Starting authentication...")
	fmt.Println()

	// Trigger the OAuth flow by creating a client.
	if _, err := client.New(cfg.CredentialsFile, cfg.TokenFile, scopes...); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Setup Complete ===")
	fmt.Println()
	fmt.Printf("Token saved to: %s\n", cfg.TokenFile)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Set TARGET_LABEL and SPREADSHEET_NAME (environment or .env)")
	fmt.Println("  2. Run 'expensemail run' to process today's notifications")
	fmt.Println()

	return nil
}
