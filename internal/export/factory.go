// Package export selects the snapshot destination for the mirror worker.
package export

import (
	"context"
	"fmt"

	"finman/internal/config"
	"finman/internal/log"
	"finman/internal/sheets"
	gsheet "finman/internal/sheets/google"
)

// NewExporter builds a snapshot writer from configuration. Without a
// spreadsheet ID the mirror stays local and a nil writer is returned;
// the worker treats that as "no export".
func NewExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.SnapshotWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		logger.Info("Sheet export disabled")
		return nil, nil
	}

	client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	if err != nil {
		return nil, fmt.Errorf("google sheets exporter: %w", err)
	}

	logger.Info("Sheet export enabled", "sheet", cfg.GoogleSheetName)
	return client, nil
}
