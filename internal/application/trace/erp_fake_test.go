package trace_test

import (
	"context"
	"sort"
	"strings"

	"github.com/jfarias/trazabilidad-api/internal/application/ports"
	"github.com/jfarias/trazabilidad-api/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// fakeERP implementación en memoria del puerto ERPClient: un mini evaluador de
// filtros sobre tablas de filas crudas, con la misma forma que devuelve el RPC
// real (campos relacionales como [id, etiqueta] con ids float64, igual que al
// decodificar JSON).
// ──────────────────────────────────────────────────────────────────────────────

type fakeERP struct {
	tables map[string][]ports.Row
	// failOn colecciones cuya consulta falla con ErrUpstream.
	failOn map[string]bool
	// calls registro de colecciones consultadas, en orden.
	calls []string
}

func newFakeERP() *fakeERP {
	return &fakeERP{
		tables: map[string][]ports.Row{},
		failOn: map[string]bool{},
	}
}

func (f *fakeERP) add(collection string, rows ...ports.Row) {
	f.tables[collection] = append(f.tables[collection], rows...)
}

func (f *fakeERP) SearchRead(_ context.Context, collection string, filter ports.Filter, _ []string, limit int, order string) ([]ports.Row, error) {
	f.calls = append(f.calls, collection)
	if f.failOn[collection] {
		return nil, domain.ErrUpstream
	}
	var out []ports.Row
	for _, row := range f.tables[collection] {
		if matchesAll(row, filter) {
			out = append(out, row)
		}
	}
	if strings.HasPrefix(order, "date") {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Str("date") < out[j].Str("date")
		})
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeERP) Read(ctx context.Context, collection string, ids []int64, fields []string) ([]ports.Row, error) {
	return f.SearchRead(ctx, collection, ports.Filter{ports.C("id", "in", ids)}, fields, 0, "")
}

func (f *fakeERP) Execute(context.Context, string, string, ...any) (any, error) {
	return nil, nil
}

func (f *fakeERP) SearchReadBatch(ctx context.Context, collection string, filter ports.Filter, fields []string, _ int, order string) ([]ports.Row, error) {
	return f.SearchRead(ctx, collection, filter, fields, 0, order)
}

func matchesAll(row ports.Row, filter ports.Filter) bool {
	for _, c := range filter {
		if !matches(row, c) {
			return false
		}
	}
	return true
}

func matches(row ports.Row, c ports.Condition) bool {
	switch c.Op {
	case "=":
		switch want := c.Value.(type) {
		case string:
			return row.Str(c.Field) == want
		case int64:
			return relOrInt(row, c.Field) == want
		case int:
			return relOrInt(row, c.Field) == int64(want)
		}
	case "in":
		switch vals := c.Value.(type) {
		case []int64:
			id := relOrInt(row, c.Field)
			for _, v := range vals {
				if v == id {
					return true
				}
			}
		case []string:
			s := row.Str(c.Field)
			for _, v := range vals {
				if v == s {
					return true
				}
			}
		}
	case "ilike":
		want, _ := c.Value.(string)
		return strings.Contains(strings.ToLower(row.Str(c.Field)), strings.ToLower(want))
	case ">":
		// Fechas del ERP: comparación lexicográfica sobre el formato fijo.
		want, _ := c.Value.(string)
		return row.Str(c.Field) > want
	}
	return false
}

// relOrInt id de un campo relacional o numérico pelado.
func relOrInt(row ports.Row, field string) int64 {
	if rel := row.Rel(field); rel.IsSet() {
		return rel.ID
	}
	return row.Int64(field)
}

// ── Constructores de filas ────────────────────────────────────────────────────

// rel forma relacional [id, etiqueta] tal como llega del RPC (ids float64).
func rel(id int64, label string) []any {
	return []any{float64(id), label}
}

type moveArgs struct {
	id        int64
	ref       string
	originPkg []any // rel(...) o nil
	destPkg   []any
	locID     int64
	locDestID int64
	qty       float64
	date      string // "2006-01-02 15:04:05"
	pickingID int64
}

func moveRow(s moveArgs) ports.Row {
	row := ports.Row{
		"id":               float64(s.id),
		"reference":        s.ref,
		"state":            "done",
		"qty_done":         s.qty,
		"date":             s.date,
		"write_date":       s.date,
		"location_id":      rel(s.locID, ""),
		"location_dest_id": rel(s.locDestID, ""),
		"product_id":       rel(1000, "Manzana Fuji"),
	}
	if s.originPkg != nil {
		row["package_id"] = s.originPkg
	} else {
		row["package_id"] = false
	}
	if s.destPkg != nil {
		row["result_package_id"] = s.destPkg
	} else {
		row["result_package_id"] = false
	}
	if s.pickingID != 0 {
		row["picking_id"] = rel(s.pickingID, "")
	} else {
		row["picking_id"] = false
	}
	row["lot_id"] = false
	return row
}

func pickingRow(id int64, origin string, partnerID int64, partnerName, trackingRef string) ports.Row {
	row := ports.Row{"id": float64(id), "name": "", "origin": origin}
	if partnerID != 0 {
		row["partner_id"] = rel(partnerID, partnerName)
	} else {
		row["partner_id"] = false
	}
	if trackingRef != "" {
		row["carrier_tracking_ref"] = trackingRef
	}
	return row
}

func packageRow(id int64, name string) ports.Row {
	return ports.Row{"id": float64(id), "name": name}
}

func partnerRow(id int64, name string) ports.Row {
	return ports.Row{"id": float64(id), "name": name}
}
