package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/fleet/internal/common"
	"github.com/Veraticus/fleet/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// FleetTab is the title of the tab holding the fleet report.
const FleetTab = "Fleet"

// valueInput stores cells exactly as sent. Boat names are free text, so a
// name such as "=1+1" must not be parsed as a formula.
const valueInput = "RAW"

// Writer publishes the fleet report to a Google spreadsheet.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	now     func() time.Time
	config  Config
}

// NewWriter authenticates against the Sheets API and returns a writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: service,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// tokenSource prefers a service account key and falls back to a stored
// OAuth refresh token.
func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath != "" {
		// #nosec G304 - the key path comes from the user's own configuration
		key, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwt.TokenSource(ctx), nil
	}

	client := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	return client.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}), nil
}

// Write replaces the fleet tab with the current report.
func (w *Writer) Write(ctx context.Context, fleet *model.Fleet) error {
	w.logger.Info("publishing fleet report", "boats", fleet.Len())

	retryOpts := common.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	var tab int64
	err := common.WithRetry(ctx, func() error {
		var err error
		spreadsheetID, tab, err = w.locateFleetTab(ctx)
		return classifyAPIError(err)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to open spreadsheet: %w", err)
	}

	values := prepareReportData(fleet, w.now())

	err = common.WithRetry(ctx, func() error {
		return classifyAPIError(w.replaceValues(ctx, spreadsheetID, values))
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write fleet report: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: formatRequests(tab, len(values)),
			}).Context(ctx).Do()
			return classifyAPIError(err)
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic.
			w.logger.Warn("failed to format fleet report", "error", err)
		}
	}

	w.logger.Info("fleet report published",
		"spreadsheet_id", spreadsheetID,
		"rows", len(values))
	return nil
}

// locateFleetTab opens the configured spreadsheet, adding the fleet tab when
// it is missing, or creates a new spreadsheet when none is configured.
func (w *Writer) locateFleetTab(ctx context.Context) (string, int64, error) {
	if w.config.SpreadsheetID == "" {
		created, err := w.service.Spreadsheets.Create(&sheets.Spreadsheet{
			Properties: &sheets.SpreadsheetProperties{
				Title:    w.config.SpreadsheetName,
				TimeZone: w.config.TimeZone,
			},
			Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: FleetTab}}},
		}).Context(ctx).Do()
		if err != nil {
			return "", 0, fmt.Errorf("unable to create spreadsheet: %w", err)
		}
		w.logger.Info("created spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
		// Later writes go to the same spreadsheet.
		w.config.SpreadsheetID = created.SpreadsheetId

		id, _ := tabID(created, FleetTab)
		return created.SpreadsheetId, id, nil
	}

	existing, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
	}
	if id, ok := tabID(existing, FleetTab); ok {
		return existing.SpreadsheetId, id, nil
	}

	resp, err := w.service.Spreadsheets.BatchUpdate(existing.SpreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{Title: FleetTab},
		}}},
	}).Context(ctx).Do()
	if err != nil {
		return "", 0, fmt.Errorf("unable to add %s tab: %w", FleetTab, err)
	}
	return existing.SpreadsheetId, resp.Replies[0].AddSheet.Properties.SheetId, nil
}

func (w *Writer) replaceValues(ctx context.Context, spreadsheetID string, values [][]any) error {
	if _, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, FleetTab, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear %s tab: %w", FleetTab, err)
	}

	for start := 0; start < len(values); start += w.config.BatchSize {
		end := min(start+w.config.BatchSize, len(values))
		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, fmt.Sprintf("%s!A%d", FleetTab, start+1), &sheets.ValueRange{
			Values: values[start:end],
		}).ValueInputOption(valueInput).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to write rows %d-%d: %w", start+1, end, err)
		}
		w.logger.Debug("wrote rows", "start_row", start+1, "rows", end-start)
	}
	return nil
}

// tabID finds a tab by title.
func tabID(spreadsheet *sheets.Spreadsheet, title string) (int64, bool) {
	for _, s := range spreadsheet.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return s.Properties.SheetId, true
		}
	}
	return 0, false
}
