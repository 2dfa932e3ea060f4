package backend

import (
	"context"
	"fmt"

	"bilancio/internal/log"
	gsheet "bilancio/internal/sheets/google"
	"bilancio/internal/sheets/memory"

	goption "google.golang.org/api/option"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger

	// sheetOptions are passed to the Sheets client; tests point it at a fake server.
	sheetOptions []goption.ClientOption
}

// NewFactory creates a new export factory
func NewFactory(logger *log.Logger, sheetOptions ...goption.ClientOption) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger:       logger.WithComponent(log.ComponentBackend),
		sheetOptions: sheetOptions,
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsTarget:
		return f.createSheets(ctx, config)
	case MemoryTarget:
		f.logger.Info("Initialized in-memory summary export")
		return &Result{Writer: memory.New()}, nil
	case NoTarget:
		f.logger.Info("Summary export disabled")
		return &Result{}, nil
	default:
		return nil, fmt.Errorf("unsupported export target: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheets(ctx context.Context, config Config) (*Result, error) {
	cli, err := gsheet.New(ctx, config.SpreadsheetID, config.SheetName, f.sheetOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets summary export",
		log.FieldOperation, log.OpCreate,
		"spreadsheet_id", config.SpreadsheetID)

	return &Result{Writer: cli}, nil
}
