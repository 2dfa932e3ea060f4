package backend

import (
	"errors"
	"fmt"

	"bilancio/internal/config"
)

// FromAppConfig converts the application config to export config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := Type(appConfig.ExportTarget)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid export target in config: %s", appConfig.ExportTarget)
	}

	return Config{
		Type:          t,
		SpreadsheetID: appConfig.GoogleSpreadsheetID,
		SheetName:     appConfig.GoogleSheetName,
	}, nil
}

// Validate validates the export configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid export target: %s", c.Type)
	}

	if c.Type == SheetsTarget && c.SpreadsheetID == "" {
		return errors.New("Google Spreadsheet ID is required for sheets export")
	}

	return nil
}

// Types returns all valid export target types
func Types() []Type {
	return []Type{MemoryTarget, SheetsTarget, NoTarget}
}
