package trace_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	"github.com/jfarias/trazabilidad-api/internal/domain/trace"
)

func candidate(id int64, ref string, date string, withOrigin bool) entity.Movement {
	d, _ := time.Parse("2006-01-02", date)
	m := entity.Movement{ID: id, Reference: ref, Date: d}
	if withOrigin {
		m.OriginPackage = entity.NewRelation(id, "ORIGEN")
	}
	return m
}

func TestClassifyOrigin_SinCandidatos(t *testing.T) {
	got := trace.ClassifyOrigin(nil)
	assert.Equal(t, entity.SinOrigen, got.Quality)
	assert.Zero(t, got.Candidates)
}

func TestClassifyOrigin_UnicoCandidato(t *testing.T) {
	// Creación verdadera: sin paquete de origen.
	got := trace.ClassifyOrigin([]entity.Movement{candidate(1, "AJUSTE", "2024-01-01", false)})
	assert.Equal(t, entity.OrigenClaro, got.Quality)

	// Referencia de fabricación aunque venga de otro paquete.
	got = trace.ClassifyOrigin([]entity.Movement{candidate(1, "WH/MO/00100", "2024-01-01", true)})
	assert.Equal(t, entity.OrigenClaro, got.Quality)
	assert.Equal(t, "WH/MO/00100", got.SelectedProcess)

	// Traspaso pelado: no se puede afirmar nada.
	got = trace.ClassifyOrigin([]entity.Movement{candidate(1, "TRASPASO", "2024-01-01", true)})
	assert.Equal(t, entity.OrigenDesconocido, got.Quality)
}

func TestClassifyOrigin_VariosCandidatos(t *testing.T) {
	// Gana el primero sin paquete de origen.
	got := trace.ClassifyOrigin([]entity.Movement{
		candidate(1, "TRASPASO", "2024-01-01", true),
		candidate(2, "CREACION", "2024-01-02", false),
	})
	assert.Equal(t, entity.OrigenClaro, got.Quality)
	assert.Equal(t, "CREACION", got.SelectedProcess)
	assert.Equal(t, 2, got.Candidates)

	// Sin creación: el primero con patrón de fabricación, como ambiguo.
	got = trace.ClassifyOrigin([]entity.Movement{
		candidate(1, "TRASPASO", "2024-01-01", true),
		candidate(2, "WH/MO/00200", "2024-01-02", true),
		candidate(3, "WH/MO/00300", "2024-01-03", true),
	})
	assert.Equal(t, entity.OrigenAmbiguo, got.Quality)
	assert.Equal(t, "WH/MO/00200", got.SelectedProcess)

	// Ni creación ni patrón: el más antiguo (entran ordenados por fecha).
	got = trace.ClassifyOrigin([]entity.Movement{
		candidate(1, "TRASPASO-A", "2024-01-01", true),
		candidate(2, "TRASPASO-B", "2024-01-02", true),
	})
	assert.Equal(t, entity.OrigenDesconocido, got.Quality)
	assert.Equal(t, "TRASPASO-A", got.SelectedProcess)
}

func TestOriginQuality_Recovered(t *testing.T) {
	assert.Equal(t, entity.OriginQuality("ORIGEN_CLARO_RECOVERED"), entity.OrigenClaro.Recovered())
}
