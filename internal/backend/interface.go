package backend

import (
	"context"

	"bilancio/internal/sheets"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result contains the export writer and an optional cleanup function.
// Writer is nil when exporting is disabled.
type Result struct {
	Writer  sheets.SummaryWriter
	Cleanup CleanupFunc
}

// Factory creates export writers based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for export target creation
type Config struct {
	Type Type

	// Google Sheets specific
	SpreadsheetID string
	SheetName     string
}

// Type represents the kind of export target
type Type string

const (
	MemoryTarget Type = "memory"
	SheetsTarget Type = "sheets"
	NoTarget     Type = "none"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the target type is known
func (t Type) IsValid() bool {
	switch t {
	case MemoryTarget, SheetsTarget, NoTarget:
		return true
	default:
		return false
	}
}
