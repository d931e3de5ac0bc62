package indexer

import (
	"context"
	"time"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// SchemaVersion versión del layout del snapshot en disco. Un cambio de forma
// en lo persistido exige subirla; el cargador ignora snapshots de otra versión.
const SchemaVersion = "v3"

// IndexSnapshot estado completo del índice tal como se persiste.
type IndexSnapshot struct {
	Version     string                   `json:"version"`
	MoveLines   []entity.Movement        `json:"move_lines"`
	Packages    map[int64]ports.Row      `json:"packages"`
	Productions map[int64]ports.Row      `json:"productions"`
	Pickings    map[int64]ports.Row      `json:"pickings"`
	Partners    map[int64]ports.Row      `json:"partners"`
	Products    map[int64]ports.Row      `json:"products"`
	Locations   map[int64]ports.Row      `json:"locations"`
	LastRefresh time.Time                `json:"last_refresh"`
}

// SnapshotStore puerto de persistencia del índice (cache en disco versionada).
type SnapshotStore interface {
	// Save persiste el snapshot completo.
	Save(ctx context.Context, snap *IndexSnapshot) error
	// Load devuelve (nil, false, nil) si no hay snapshot o su versión no
	// coincide con SchemaVersion (los datos viejos se ignoran, no se migran).
	Load(ctx context.Context) (*IndexSnapshot, bool, error)
	Close() error
}
