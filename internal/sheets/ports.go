// Package sheets defines the export ports the mirror worker writes
// through. Implementations live in subpackages.
package sheets

import (
	"context"

	"finman/internal/core"
)

// SnapshotWriter replaces the exported sheet contents with a full
// transaction snapshot. The export is idempotent: writing the same
// snapshot twice leaves the sheet unchanged.
type SnapshotWriter interface {
	WriteSnapshot(ctx context.Context, txs []core.Transaction) error
}
