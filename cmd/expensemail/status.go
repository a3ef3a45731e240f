package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/imalan123/personal-llm-agent/pkg/client"
	"github.com/imalan123/personal-llm-agent/pkg/config"
)

// runStatus checks the configuration and authentication status.
func runStatus() error {
	fmt.Println("=== Expensemail Status ===")
	fmt.Println()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	allGood := true

	checkSetting(&allGood, "TARGET_LABEL", cfg.TargetLabel)
	checkSetting(&allGood, "SPREADSHEET_NAME", cfg.SpreadsheetName)
	checkSetting(&allGood, "OLLAMA_LLM_MODEL", cfg.OllamaModel)

	fmt.Printf("Credentials file (%s): ", cfg.CredentialsFile)
	if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
		fmt.Println("MISSING")
		allGood = false
	} else {
		fmt.Println("found")
	}

	token := checkTokenStatus(&allGood, cfg.TokenFile)

	if allGood && token != nil {
		checkGmailConnectivity(&allGood, cfg)
	}

	fmt.Println()
	if allGood {
		fmt.Println("Status: ready to run")
	} else {
		fmt.Println("Status: configuration issues detected")
		fmt.Println()
		fmt.Println("Fix the issues above, then run 'expensemail status' again.")
	}

	return nil
}

func checkSetting(allGood *bool, name, value string) {
	fmt.Printf("%s: ", name)
	if value == "" {
		fmt.Println("NOT SET")
		*allGood = false
	} else {
		fmt.Printf("%q\n", value)
	}
}

func checkTokenStatus(allGood *bool, tokenPath string) *oauth2.Token {
	fmt.Printf("OAuth token (%s): ", tokenPath)

	data, err := os.ReadFile(tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("not found (run 'expensemail setup')")
		} else {
			fmt.Printf("unreadable: %v\n", err)
		}
		*allGood = false
		return nil
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		fmt.Println("invalid format")
		*allGood = false
		return nil
	}

	if token.Expiry.Before(time.Now()) {
		if token.RefreshToken != "" {
			fmt.Println("expired (will refresh on next run)")
		} else {
			fmt.Println("expired, no refresh token (run 'expensemail setup --force')")
			*allGood = false
		}
	} else {
		fmt.Printf("valid (expires: %s)\n", token.Expiry.Format(time.RFC3339))
	}
	return &token
}

func checkGmailConnectivity(allGood *bool, cfg *config.Config) {
	fmt.Print("Gmail API: ")

	httpClient, err := client.New(cfg.CredentialsFile, cfg.TokenFile, scopes...)
	if err != nil {
		fmt.Printf("oauth client failed: %v\n", err)
		*allGood = false
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		fmt.Printf("creating service failed: %v\n", err)
		*allGood = false
		return
	}

	// Listing labels doubles as a connectivity test and shows whether the
	// target label exists.
	resp, err := svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		fmt.Printf("API call failed: %v\n", err)
		*allGood = false
		return
	}

	fmt.Printf("connected (%d labels)\n", len(resp.Labels))
}
