package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
)

func TestTraceable_SinPaquetesNoConectaNada(t *testing.T) {
	var m entity.Movement
	assert.False(t, m.Traceable())

	m.OriginPackage = entity.NewRelation(1, "PACK1")
	assert.True(t, m.Traceable())

	m = entity.Movement{DestinationPackage: entity.NewRelation(2, "PACK2")}
	assert.True(t, m.Traceable())
}

func TestSortMovementsByDate_DesempataPorID(t *testing.T) {
	d1, _ := time.Parse("2006-01-02", "2024-05-01")
	d2, _ := time.Parse("2006-01-02", "2024-05-02")
	moves := []entity.Movement{
		{ID: 30, Date: d2},
		{ID: 20, Date: d1},
		{ID: 10, Date: d1},
	}

	entity.SortMovementsByDate(moves)

	assert.Equal(t, []int64{10, 20, 30}, []int64{moves[0].ID, moves[1].ID, moves[2].ID})
}
