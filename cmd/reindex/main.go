// reindex reconstruye el índice local de movimientos desde el ERP y lo
// persiste en la cache de disco, sin levantar el servidor HTTP.
//
// Uso: go run ./cmd/reindex
// Lee la misma configuración que el servidor (variables de entorno / .env).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jfarias/trazabilidad-api/internal/application/indexer"
	"github.com/jfarias/trazabilidad-api/internal/infrastructure/badgercache"
	"github.com/jfarias/trazabilidad-api/internal/infrastructure/erpclient"
	"github.com/jfarias/trazabilidad-api/pkg/config"
	"github.com/jfarias/trazabilidad-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	erp := erpclient.New(cfg.ERP, log)
	store, err := badgercache.New(badgercache.Config{
		Path:       cfg.Cache.Path,
		InMemory:   cfg.Cache.InMemory,
		SyncWrites: true,
	}, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir cache: %v\n", err)
		os.Exit(1)
	}

	index := indexer.New(erp, store, log, cfg.Trace)
	if err := index.Rebuild(context.Background()); err != nil {
		_ = index.Close()
		fmt.Fprintf(os.Stderr, "Reconstruir índice: %v\n", err)
		os.Exit(1)
	}

	s := index.CurrentStatus()
	if err := index.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Cerrar cache: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Índice reconstruido: %d líneas de movimiento, %d paquetes\n", s.MoveLines, s.Packages)
}
