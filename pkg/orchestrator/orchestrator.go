// Package orchestrator runs the expense batch end to end.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/imalan123/personal-llm-agent/pkg/reader/gmail"
	"github.com/imalan123/personal-llm-agent/pkg/writer/sheets"
)

// Batch wires the session manager and the spreadsheet writer into one
// linear run. Every dependency is passed in explicitly; the batch keeps no
// state between runs and performs no retries of its own.
type Batch struct {
	Session         *gmail.Session
	Finder          sheets.SpreadsheetFinder
	Writer          *sheets.Writer
	SpreadsheetName string
	Logger          *slog.Logger
}

// Run pulls today's notifications, resolves the target spreadsheet and
// monthly tab, appends the extracted transactions and refreshes the running
// total. A run with no matching messages is a clean no-op; any other
// failure aborts.
func (b *Batch) Run(ctx context.Context) error {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}

	transactions, err := b.Session.Pull(ctx)
	if err != nil {
		if errors.Is(err, gmail.ErrNoMessages) {
			logger.Info("nothing to do", "reason", err.Error())
			return nil
		}
		return fmt.Errorf("pulling notifications: %w", err)
	}
	if len(transactions) == 0 {
		// Every listed message failed extraction and was kept.
		logger.Warn("no transactions extracted, leaving spreadsheet untouched")
		return nil
	}

	logger.Info("extracted transactions", "count", len(transactions))

	spreadsheetID, err := b.Finder.FindSpreadsheet(ctx, b.SpreadsheetName)
	if err != nil {
		return fmt.Errorf("resolving spreadsheet %q: %w", b.SpreadsheetName, err)
	}
	logger.Info("resolved spreadsheet", "name", b.SpreadsheetName, "id", spreadsheetID)

	tab, err := b.Writer.EnsureMonthTab(ctx, spreadsheetID)
	if err != nil {
		return err
	}

	if err := b.Writer.Append(ctx, spreadsheetID, tab, transactions); err != nil {
		return err
	}

	if err := b.Writer.WriteTotal(ctx, spreadsheetID, tab); err != nil {
		return err
	}

	logger.Info("batch complete", "tab", tab, "rows", len(transactions))
	return nil
}
