package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jfarias/trazabilidad-api/internal/domain/trace"
)

func TestIsSaleOrderRef(t *testing.T) {
	assert.True(t, trace.IsSaleOrderRef("S00531"))
	assert.True(t, trace.IsSaleOrderRef("  S00531  "), "tolera espacios alrededor")
	assert.False(t, trace.IsSaleOrderRef("PACK0048229"))
	assert.False(t, trace.IsSaleOrderRef("OUT/S00531"), "el prefijo lo descarta como identificador de venta")
	assert.False(t, trace.IsSaleOrderRef("S"))
}

func TestHasManufacturingRef_SubcadenaPermisiva(t *testing.T) {
	assert.True(t, trace.HasManufacturingRef("WH/MO/00100"))
	// El marcador es subcadena pura: "PROMO" también clasifica. Comporta igual
	// que el sistema histórico y los tests lo fijan para que nadie lo "arregle"
	// sin mirar las referencias reales.
	assert.True(t, trace.HasManufacturingRef("PROMO-2024"))
	assert.False(t, trace.HasManufacturingRef("WH/IN/00055"))
}

func TestExtractSaleCode(t *testing.T) {
	assert.Equal(t, "S00531", trace.ExtractSaleCode("OUT/S00531"))
	assert.Equal(t, "S00531", trace.ExtractSaleCode("S00531"))
	assert.Equal(t, "", trace.ExtractSaleCode("WH/MO/00100"))
}

func TestIsExcluded(t *testing.T) {
	patterns := []string{"RF/INT", ""}
	assert.True(t, trace.IsExcluded("RF/INT/00033", patterns))
	assert.False(t, trace.IsExcluded("WH/MO/00100", patterns))
	assert.False(t, trace.IsExcluded("cualquiera", nil))
}
