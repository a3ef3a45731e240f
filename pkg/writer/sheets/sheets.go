// Package sheets appends transaction batches to a monthly spreadsheet tab.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imalan123/personal-llm-agent/pkg/api"
)

// ErrSpreadsheetNotFound is returned when no spreadsheet with the requested
// name exists in the storage backend.
var ErrSpreadsheetNotFound = errors.New("spreadsheet not found")

// Summary cell layout: a fixed label in F3 and a running total in G3.
const (
	totalLabel       = "Total Spend:"
	totalLabelColumn = "F"
	totalSumColumn   = "G"
	totalRow         = 3
)

// CellUpdate is one range of values for a batched cell update.
type CellUpdate struct {
	Range  string
	Values [][]any
}

// Spreadsheets is the slice of the spreadsheet service the writer uses.
type Spreadsheets interface {
	// SheetTitles returns the titles of all tabs in the spreadsheet.
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	// AddSheet creates a new tab with the given title.
	AddSheet(ctx context.Context, spreadsheetID, title string) error
	// AppendRows appends rows at the given range without overwriting
	// existing content.
	AppendRows(ctx context.Context, spreadsheetID, appendRange string, values [][]any) error
	// BatchUpdateValues writes several cell ranges in a single call.
	BatchUpdateValues(ctx context.Context, spreadsheetID string, updates []CellUpdate) error
}

// SpreadsheetFinder locates a spreadsheet file by name.
type SpreadsheetFinder interface {
	// FindSpreadsheet returns the identifier of the named, non-trashed
	// spreadsheet, or an error wrapping ErrSpreadsheetNotFound.
	FindSpreadsheet(ctx context.Context, name string) (string, error)
}

// Writer appends Transactions to the tab named after the current month and
// keeps the running total formula current. It holds no local state; every
// side effect is a remote spreadsheet mutation.
type Writer struct {
	sheets Spreadsheets
	logger *slog.Logger
	now    func() time.Time
}

// NewWriter creates a writer over the given spreadsheet service.
func NewWriter(sheets Spreadsheets, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		sheets: sheets,
		logger: logger,
		now:    time.Now,
	}
}

// MonthTabTitle returns the tab title for the given date, e.g. "August 2026".
func MonthTabTitle(t time.Time) string {
	return t.Format("January 2006")
}

// EnsureMonthTab returns the title of the current month's tab, creating the
// tab if it does not exist yet. Calling it twice within the same month
// returns the same title and creates at most one tab.
func (w *Writer) EnsureMonthTab(ctx context.Context, spreadsheetID string) (string, error) {
	title := MonthTabTitle(w.now())

	titles, err := w.sheets.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return "", fmt.Errorf("fetching sheet metadata: %w", err)
	}

	for _, existing := range titles {
		if existing == title {
			w.logger.Info("month tab already exists", "tab", title)
			return title, nil
		}
	}

	w.logger.Info("creating month tab", "tab", title)
	if err := w.sheets.AddSheet(ctx, spreadsheetID, title); err != nil {
		return "", fmt.Errorf("creating tab %q: %w", title, err)
	}

	return title, nil
}

// Append converts each transaction to a 4-column row and appends the batch
// to column A of the given tab.
func (w *Writer) Append(ctx context.Context, spreadsheetID, tab string, transactions []api.Transaction) error {
	rows := make([][]any, 0, len(transactions))
	for _, transaction := range transactions {
		rows = append(rows, transaction.Row())
	}

	appendRange := fmt.Sprintf("'%s'!A1", tab)
	if err := w.sheets.AppendRows(ctx, spreadsheetID, appendRange, rows); err != nil {
		return fmt.Errorf("appending %d rows to %q: %w", len(rows), tab, err)
	}

	w.logger.Info("appended transactions", "tab", tab, "count", len(rows))
	return nil
}

// WriteTotal (re)writes the summary cells: the fixed label into F3 and a
// sum formula over the whole of column C into G3, in one batched update.
// The formula recomputes over the entire column, so it stays correct across
// runs regardless of how many rows have been appended.
func (w *Writer) WriteTotal(ctx context.Context, spreadsheetID, tab string) error {
	updates := []CellUpdate{
		{
			Range:  fmt.Sprintf("'%s'!%s%d", tab, totalLabelColumn, totalRow),
			Values: [][]any{{totalLabel}},
		},
		{
			Range:  fmt.Sprintf("'%s'!%s%d", tab, totalSumColumn, totalRow),
			Values: [][]any{{SumFormula(tab)}},
		},
	}

	if err := w.sheets.BatchUpdateValues(ctx, spreadsheetID, updates); err != nil {
		return fmt.Errorf("updating summary cells on %q: %w", tab, err)
	}

	w.logger.Info("updated running total", "tab", tab)
	return nil
}

// SumFormula returns the running-total formula for a tab.
func SumFormula(tab string) string {
	return fmt.Sprintf("=SUM('%s'!C:C)", tab)
}
