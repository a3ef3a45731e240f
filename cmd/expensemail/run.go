package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/imalan123/personal-llm-agent/pkg/client"
	"github.com/imalan123/personal-llm-agent/pkg/config"
	"github.com/imalan123/personal-llm-agent/pkg/orchestrator"
	gmailreader "github.com/imalan123/personal-llm-agent/pkg/reader/gmail"
	sheetswriter "github.com/imalan123/personal-llm-agent/pkg/writer/sheets"
)

// scopes covers the three backing services. Message deletion needs the full
// Gmail scope.
var scopes = []string{
	gmail.MailGoogleComScope,
	gsheets.SpreadsheetsScope,
	drive.DriveReadonlyScope,
}

// runBatch executes one pass of the expense batch.
func runBatch(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("configuration loaded",
		"label", cfg.TargetLabel,
		"spreadsheet", cfg.SpreadsheetName,
	)

	httpClient, err := client.New(cfg.CredentialsFile, cfg.TokenFile, scopes...)
	if err != nil {
		return fmt.Errorf("creating http client: %w", err)
	}

	mailbox, err := gmailreader.NewGoogleMailbox(httpClient)
	if err != nil {
		return err
	}

	spreadsheets, err := sheetswriter.NewGoogleSpreadsheets(httpClient, logger.With("component", "sheets"))
	if err != nil {
		return err
	}

	finder, err := sheetswriter.NewGoogleDrive(httpClient)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch := &orchestrator.Batch{
		Session:         gmailreader.NewSession(mailbox, cfg.TargetLabel, logger.With("component", "gmail_session")),
		Finder:          finder,
		Writer:          sheetswriter.NewWriter(spreadsheets, logger.With("component", "sheets_writer")),
		SpreadsheetName: cfg.SpreadsheetName,
		Logger:          logger,
	}

	return batch.Run(ctx)
}
