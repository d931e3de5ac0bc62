// Package badgercache persiste el snapshot del índice de trazabilidad en una
// BadgerDB local: un par llave-valor por sección, con una llave de versión
// que invalida payloads de esquemas anteriores.
package badgercache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/jfarias/trazabilidad-api/internal/application/indexer"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

// Llaves del snapshot en disco.
const (
	keyVersion     = "version"
	keyMoveLines   = "move_lines"
	keyPackages    = "packages"
	keyProductions = "productions"
	keyPickings    = "pickings"
	keyPartners    = "partners"
	keyProducts    = "products"
	keyLocations   = "locations"
	keyLastRefresh = "last_refresh"
)

// Config opciones del almacenamiento.
type Config struct {
	Path       string // directorio de BadgerDB
	InMemory   bool   // true = sin disco (tests)
	SyncWrites bool
}

// Store implementación de indexer.SnapshotStore sobre BadgerDB.
type Store struct {
	db  *badger.DB
	log *logger.Logger
}

// New abre (o crea) la base. El logging interno de Badger se silencia; lo que
// importa queda en el logger propio.
func New(cfg Config, log *logger.Logger) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)
	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("abrir cache badger: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Save persiste el snapshot completo, sección por sección, en una sola
// transacción para que un lector nunca vea una mezcla de versiones.
func (s *Store) Save(ctx context.Context, snap *indexer.IndexSnapshot) error {
	sections := map[string]any{
		keyMoveLines:   snap.MoveLines,
		keyPackages:    snap.Packages,
		keyProductions: snap.Productions,
		keyPickings:    snap.Pickings,
		keyPartners:    snap.Partners,
		keyProducts:    snap.Products,
		keyLocations:   snap.Locations,
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyVersion), []byte(indexer.SchemaVersion)); err != nil {
			return err
		}
		for key, section := range sections {
			raw, err := json.Marshal(section)
			if err != nil {
				return fmt.Errorf("serializar %s: %w", key, err)
			}
			if err := txn.Set([]byte(key), raw); err != nil {
				return err
			}
		}
		return txn.Set([]byte(keyLastRefresh), []byte(snap.LastRefresh.UTC().Format(time.RFC3339Nano)))
	})
}

// Load restaura el snapshot. Devuelve ok=false (sin error) cuando no hay
// nada persistido o cuando la versión guardada no es SchemaVersion: los
// datos viejos se ignoran por completo, nunca se migran parcialmente.
func (s *Store) Load(ctx context.Context) (*indexer.IndexSnapshot, bool, error) {
	snap := &indexer.IndexSnapshot{Version: indexer.SchemaVersion}
	ok := true
	err := s.db.View(func(txn *badger.Txn) error {
		version, err := readRaw(txn, keyVersion)
		if errors.Is(err, badger.ErrKeyNotFound) {
			ok = false
			return nil
		}
		if err != nil {
			return err
		}
		if string(version) != indexer.SchemaVersion {
			s.log.Warn().Str("found", string(version)).Str("expected", indexer.SchemaVersion).
				Msg("versión de cache distinta, se descarta el snapshot en disco")
			ok = false
			return nil
		}

		if err := readJSON(txn, keyMoveLines, &snap.MoveLines); err != nil {
			return err
		}
		if err := readJSON(txn, keyPackages, &snap.Packages); err != nil {
			return err
		}
		if err := readJSON(txn, keyProductions, &snap.Productions); err != nil {
			return err
		}
		if err := readJSON(txn, keyPickings, &snap.Pickings); err != nil {
			return err
		}
		if err := readJSON(txn, keyPartners, &snap.Partners); err != nil {
			return err
		}
		if err := readJSON(txn, keyProducts, &snap.Products); err != nil {
			return err
		}
		if err := readJSON(txn, keyLocations, &snap.Locations); err != nil {
			return err
		}
		raw, err := readRaw(txn, keyLastRefresh)
		if err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return fmt.Errorf("parsear last_refresh: %w", err)
		}
		snap.LastRefresh = t
		return nil
	})
	if err != nil || !ok {
		return nil, false, err
	}
	return snap, true, nil
}

// Close cierra la base.
func (s *Store) Close() error {
	return s.db.Close()
}

func readRaw(txn *badger.Txn, key string) ([]byte, error) {
	item, err := txn.Get([]byte(key))
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func readJSON(txn *badger.Txn, key string, into any) error {
	raw, err := readRaw(txn, key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil // sección ausente: queda el cero del tipo
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, into)
}
