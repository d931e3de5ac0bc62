// Package trace contiene los servicios puros de dominio del motor de
// trazabilidad: patrones de referencia, clasificación de movimientos y la
// heurística de calidad de origen.
package trace

import (
	"regexp"
	"strings"
)

// Marcadores que las referencias del ERP codifican en el texto libre.
const (
	// manufacturingMarker marcador de orden de fabricación. Deliberadamente
	// igual de permisivo que el sistema histórico: basta la subcadena "MO".
	// Anclarlo a frontera de token cambiaría la clasificación de referencias
	// reales ya emitidas, así que se conserva tal cual.
	manufacturingMarker = "MO"
	inboundMarker       = "IN/"
	outboundMarker      = "OUT/"
)

var (
	saleOrderRe = regexp.MustCompile(`^S\d+$`)
	saleCodeRe  = regexp.MustCompile(`S\d+`)
)

// IsSaleOrderRef indica si el identificador tiene forma de orden de venta (S00531).
func IsSaleOrderRef(s string) bool {
	return saleOrderRe.MatchString(strings.TrimSpace(s))
}

// HasManufacturingRef indica si la referencia corresponde a una orden de fabricación.
func HasManufacturingRef(ref string) bool {
	return strings.Contains(ref, manufacturingMarker)
}

// HasInboundRef / HasOutboundRef marcadores de entrada y salida en la referencia.
func HasInboundRef(ref string) bool  { return strings.Contains(ref, inboundMarker) }
func HasOutboundRef(ref string) bool { return strings.Contains(ref, outboundMarker) }

// ExtractSaleCode extrae el código de venta embebido en una referencia
// ("OUT/S00001" -> "S00001"). Vacío si no hay ninguno.
func ExtractSaleCode(ref string) string {
	return saleCodeRe.FindString(ref)
}

// IsExcluded indica si la referencia cae en la lista de exclusión (patrones
// de corrección interna de cantidades que ensucian la cadena sin aportar
// trazabilidad, ej. "RF/INT").
func IsExcluded(ref string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(ref, p) {
			return true
		}
	}
	return false
}
