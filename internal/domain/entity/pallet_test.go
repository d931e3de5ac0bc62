package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

func mov(id int64, qty float64, date string, product string) entity.Movement {
	d, _ := time.Parse("2006-01-02", date)
	m := entity.Movement{
		ID:       id,
		Quantity: decimal.NewFromFloat(qty),
		Date:     d,
	}
	if product != "" {
		m.Product = entity.NewRelation(id*100, product)
	}
	return m
}

func TestRegisterMovement_AcumulaCantidadesYProductos(t *testing.T) {
	p := entity.NewPallet(1, "PACK0048229")

	p = entity.RegisterMovement(p, mov(10, 120, "2024-03-01", "Manzana Fuji"), false)
	p = entity.RegisterMovement(p, mov(11, 80, "2024-03-03", "Manzana Gala"), false)
	p = entity.RegisterMovement(p, mov(12, 40, "2024-03-02", "Manzana Fuji"), true)

	assert.True(t, p.Quantity.Equal(decimal.NewFromInt(240)))
	require.Len(t, p.Products, 2)
	assert.True(t, p.Products["Manzana Fuji"].Equal(decimal.NewFromInt(160)))
	assert.Equal(t, "2024-03-01", p.FirstDate.Format("2006-01-02"))
	assert.Equal(t, "2024-03-03", p.LastDate.Format("2006-01-02"))
}

func TestRegisterMovement_EsPuro(t *testing.T) {
	// El fold no debe mutar el estado anterior: cada registro devuelve una
	// copia con sus propios mapas.
	p0 := entity.NewPallet(1, "PACK1")
	p1 := entity.RegisterMovement(p0, mov(10, 50, "2024-01-01", "Pera"), true)
	_ = entity.RegisterMovement(p1, mov(11, 25, "2024-01-02", "Pera"), true)

	assert.True(t, p0.Quantity.IsZero())
	assert.Empty(t, p0.Products)
	assert.True(t, p1.Quantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, p1.Products["Pera"].Equal(decimal.NewFromInt(50)))
}

func TestRegisterMovement_DireccionOUTEsPegajosa(t *testing.T) {
	p := entity.NewPallet(1, "PACK1")
	assert.Equal(t, entity.DirectionIN, p.Direction)

	// Producido por un proceso: pasa a OUT.
	p = entity.RegisterMovement(p, mov(10, 10, "2024-01-01", ""), false)
	assert.Equal(t, entity.DirectionOUT, p.Direction)

	// Luego consumido como insumo: sigue OUT.
	p = entity.RegisterMovement(p, mov(11, 10, "2024-01-02", ""), true)
	assert.Equal(t, entity.DirectionOUT, p.Direction)
}

func TestRegisterMovement_AcumulaLotesOrdenados(t *testing.T) {
	p := entity.NewPallet(1, "PACK1")

	m1 := mov(10, 5, "2024-01-01", "")
	m1.Lot = entity.NewRelation(7, "LOTE-B")
	m2 := mov(11, 5, "2024-01-02", "")
	m2.Lot = entity.NewRelation(8, "LOTE-A")
	m3 := mov(12, 5, "2024-01-03", "")
	m3.Lot = entity.NewRelation(7, "LOTE-B") // repetido

	p = entity.RegisterMovement(p, m1, true)
	p = entity.RegisterMovement(p, m2, true)
	p = entity.RegisterMovement(p, m3, true)

	assert.Equal(t, []string{"LOTE-A", "LOTE-B"}, p.Lots)
}

func TestTopProducts_OrdenaPorCantidadDescendente(t *testing.T) {
	p := entity.NewPallet(1, "PACK1")
	p = entity.RegisterMovement(p, mov(10, 10, "2024-01-01", "Kiwi"), true)
	p = entity.RegisterMovement(p, mov(11, 90, "2024-01-01", "Palta"), true)
	p = entity.RegisterMovement(p, mov(12, 50, "2024-01-01", "Cereza"), true)

	assert.Equal(t, []string{"Palta", "Cereza"}, p.TopProducts(2))
	assert.Equal(t, []string{"Palta", "Cereza", "Kiwi"}, p.TopProducts(10))
}
