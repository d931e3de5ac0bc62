package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrUpstream     = errors.New("ERP no disponible")
	ErrReindexing   = errors.New("reindexación en curso")
	ErrIndexEmpty   = errors.New("índice no cargado")
)
