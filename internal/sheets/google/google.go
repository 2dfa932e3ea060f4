package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"bilancio/internal/core"
	ports "bilancio/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const DefaultSheetBase = "Summary"

var _ ports.SummaryWriter = (*Client)(nil)

// Client writes monthly summaries to a spreadsheet with one sheet per year
// ("2025 Summary"). Row 1 is the header, row month+1 the month.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	mu          sync.Mutex
	knownSheets map[string]bool
}

// New creates a client authenticated with service account credentials
// taken from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, sheetBase string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	if len(opts) == 0 {
		creds, err := serviceAccountCredentials(ctx)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	sheetBase = strings.TrimSpace(sheetBase)
	if sheetBase == "" {
		sheetBase = DefaultSheetBase
	}

	slog.InfoContext(ctx, "Google Sheets client ready", "spreadsheet_id", spreadsheetID, "sheet_base", sheetBase)
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetBase:     sheetBase,
		knownSheets:   make(map[string]bool),
	}, nil
}

func serviceAccountCredentials(ctx context.Context) ([]byte, error) {
	inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case inline != "":
		slog.DebugContext(ctx, "Using inline service account credentials")
		return []byte(inline), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		slog.DebugContext(ctx, "Read service account credentials", "path", file)
		return data, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// WriteSummary overwrites the row of the summary period, creating the yearly
// sheet and its header on first use.
func (c *Client) WriteSummary(ctx context.Context, s core.MonthlySummary) error {
	if err := s.Period.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, s.Period.Year)
	if err := c.ensureSheet(ctx, sheet); err != nil {
		return err
	}

	if err := c.updateRow(ctx, sheet, 1, ports.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := c.updateRow(ctx, sheet, s.Period.Month+1, ports.SummaryRow(s)); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}

	slog.InfoContext(ctx, "Summary exported to Google Sheets",
		"sheet", sheet,
		"period", s.Period.Key(),
		"balance", s.Balance.String())
	return nil
}

func (c *Client) updateRow(ctx context.Context, sheet string, row int, cells []string) error {
	values := make([]interface{}, len(cells))
	for i, v := range cells {
		values[i] = v
	}
	vr := &gsheet.ValueRange{Values: [][]interface{}{values}}

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rowRange(sheet, row, len(cells)), vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

// ensureSheet adds the sheet when the spreadsheet does not have it yet.
func (c *Client) ensureSheet(ctx context.Context, sheet string) error {
	c.mu.Lock()
	known := c.knownSheets[sheet]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}

	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == sheet {
			exists = true
			break
		}
	}

	if !exists {
		req := &gsheet.BatchUpdateSpreadsheetRequest{
			Requests: []*gsheet.Request{{
				AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: sheet}},
			}},
		}
		if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
			return fmt.Errorf("add sheet %q: %w", sheet, err)
		}
		slog.InfoContext(ctx, "Created yearly summary sheet", "sheet", sheet)
	}

	c.mu.Lock()
	c.knownSheets[sheet] = true
	c.mu.Unlock()
	return nil
}

// rowRange returns the A1 range covering n cells of one row, e.g. "2025 Summary!A7:E7".
func rowRange(sheet string, row, n int) string {
	last := string(rune('A' + n - 1))
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, last, row)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
