package entity

import (
	"encoding/json"
	"fmt"
)

// Relation valor relacional normalizado del ERP.
// El RPC remoto devuelve los campos relacionales en tres formas distintas:
// [id, etiqueta], id pelado o false cuando está vacío. La normalización ocurre
// en la frontera (erpclient) y dentro del dominio solo circula este tipo.
type Relation struct {
	ID    int64
	Label string
	set   bool
}

// EmptyRelation relación vacía (el ERP devolvió false).
func EmptyRelation() Relation { return Relation{} }

// NewRelation construye una relación con id y etiqueta opcional.
func NewRelation(id int64, label string) Relation {
	return Relation{ID: id, Label: label, set: true}
}

// IsSet indica si la relación apunta a un registro.
func (r Relation) IsSet() bool { return r.set }

// OrZero devuelve el id o 0 si la relación está vacía.
func (r Relation) OrZero() int64 {
	if !r.set {
		return 0
	}
	return r.ID
}

// Key devuelve el id como string para usar de llave de mapa ("" si vacía).
func (r Relation) Key() string {
	if !r.set {
		return ""
	}
	return fmt.Sprintf("%d", r.ID)
}

type relationJSON struct {
	ID    int64  `json:"id"`
	Label string `json:"label,omitempty"`
}

// MarshalJSON serializa como {id, label} o null si está vacía.
func (r Relation) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	return json.Marshal(relationJSON{ID: r.ID, Label: r.Label})
}

// UnmarshalJSON acepta null o la forma {id, label} (snapshot en disco).
func (r *Relation) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = Relation{}
		return nil
	}
	var v relationJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Relation{ID: v.ID, Label: v.Label, set: true}
	return nil
}
