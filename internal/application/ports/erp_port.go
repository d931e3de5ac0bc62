// Package ports define los puertos de salida de la capa de aplicación.
package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

// Condition término de filtro estilo dominio del ERP: (campo, operador, valor).
type Condition struct {
	Field string
	Op    string
	Value any
}

// Filter conjunción de condiciones.
type Filter []Condition

// C azúcar para construir condiciones: ports.C("state", "=", "done").
func C(field, op string, value any) Condition {
	return Condition{Field: field, Op: op, Value: value}
}

// Row fila cruda devuelta por el ERP, llaveada por nombre de campo.
// Los valores relacionales llegan en tres formas ([id, etiqueta], id pelado o
// false); los accesores tipados normalizan en esta frontera y no dejan pasar
// la forma ambigua hacia el dominio.
type Row map[string]any

// ERPClient puerto de lectura contra las colecciones remotas del ERP.
// Sin reintentos: un fallo transitorio se trata igual que uno permanente.
type ERPClient interface {
	// SearchRead busca filas por filtro. order con sintaxis del ERP ("date asc").
	SearchRead(ctx context.Context, collection string, filter Filter, fields []string, limit int, order string) ([]Row, error)
	// Read lee filas por id.
	Read(ctx context.Context, collection string, ids []int64, fields []string) ([]Row, error)
	// Execute invoca un método arbitrario de la colección.
	Execute(ctx context.Context, collection, method string, args ...any) (any, error)
	// SearchReadBatch pagina un barrido completo en lotes de batchSize.
	SearchReadBatch(ctx context.Context, collection string, filter Filter, fields []string, batchSize int, order string) ([]Row, error)
}

// erpDateLayout formato de fecha-hora que emite el ERP.
const erpDateLayout = "2006-01-02 15:04:05"

// Rel normaliza un campo relacional a entity.Relation.
func (r Row) Rel(field string) entity.Relation {
	switch v := r[field].(type) {
	case nil, bool: // false = relación vacía
		return entity.EmptyRelation()
	case []any:
		if len(v) == 0 {
			return entity.EmptyRelation()
		}
		id := toInt64(v[0])
		label := ""
		if len(v) > 1 {
			label, _ = v[1].(string)
		}
		return entity.NewRelation(id, label)
	default:
		return entity.NewRelation(toInt64(v), "")
	}
}

// Str devuelve el campo como string ("" si falta o si el ERP devolvió false).
func (r Row) Str(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	default:
		return ""
	}
}

// Int64 devuelve el campo numérico como int64 (0 si falta).
func (r Row) Int64(field string) int64 {
	return toInt64(r[field])
}

// Qty devuelve el campo como cantidad decimal (cero si falta).
func (r Row) Qty(field string) decimal.Decimal {
	switch v := r[field].(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case int64:
		return decimal.NewFromInt(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// Time parsea el campo de fecha del ERP (cero si falta o no parsea).
func (r Row) Time(field string) time.Time {
	s := r.Str(field)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(erpDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}
