package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Retry policy for rate-limited appends. Only HTTP 429 responses are
// retried; every other remote error propagates immediately.
const (
	appendAttempts = 2
	appendDelay    = 60 * time.Second
)

// GoogleSpreadsheets implements Spreadsheets over the Google Sheets API.
type GoogleSpreadsheets struct {
	service *gsheets.Service
	logger  *slog.Logger
}

// NewGoogleSpreadsheets creates a Sheets-backed service from an authorized
// HTTP client.
func NewGoogleSpreadsheets(httpClient *http.Client, logger *slog.Logger) (*GoogleSpreadsheets, error) {
	service, err := gsheets.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleSpreadsheets{service: service, logger: logger}, nil
}

func (g *GoogleSpreadsheets) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	resp, err := g.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

func (g *GoogleSpreadsheets) AddSheet(ctx context.Context, spreadsheetID, title string) error {
	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{
			{
				AddSheet: &gsheets.AddSheetRequest{
					Properties: &gsheets.SheetProperties{Title: title},
				},
			},
		},
	}

	_, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *GoogleSpreadsheets) AppendRows(ctx context.Context, spreadsheetID, appendRange string, values [][]any) error {
	body := &gsheets.ValueRange{Values: values}

	return retry.Do(
		func() error {
			_, err := g.service.Spreadsheets.Values.Append(spreadsheetID, appendRange, body).
				ValueInputOption("USER_ENTERED").
				InsertDataOption("INSERT_ROWS").
				Context(ctx).
				Do()
			return err
		},
		retry.RetryIf(func(err error) bool {
			var apiErr *googleapi.Error
			if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
				g.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(appendAttempts),
		retry.Delay(appendDelay),
		retry.LastErrorOnly(true),
	)
}

func (g *GoogleSpreadsheets) BatchUpdateValues(ctx context.Context, spreadsheetID string, updates []CellUpdate) error {
	data := make([]*gsheets.ValueRange, 0, len(updates))
	for _, update := range updates {
		data = append(data, &gsheets.ValueRange{
			Range:  update.Range,
			Values: update.Values,
		})
	}

	req := &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data:             data,
	}

	_, err := g.service.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

// GoogleDrive implements SpreadsheetFinder over the Google Drive API.
type GoogleDrive struct {
	service *drive.Service
}

// NewGoogleDrive creates a Drive-backed finder from an authorized HTTP
// client.
func NewGoogleDrive(httpClient *http.Client) (*GoogleDrive, error) {
	service, err := drive.NewService(context.Background(), option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &GoogleDrive{service: service}, nil
}

// FindSpreadsheet searches Drive for a non-trashed spreadsheet with the
// exact name and returns its file ID.
func (g *GoogleDrive) FindSpreadsheet(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='application/vnd.google-apps.spreadsheet' and trashed=false", name)

	resp, err := g.service.Files.List().
		Q(query).
		Spaces("drive").
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("searching drive: %w", err)
	}

	if len(resp.Files) == 0 {
		return "", fmt.Errorf("%w: %q", ErrSpreadsheetNotFound, name)
	}
	return resp.Files[0].Id, nil
}
