package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jfarias/trazabilidad-api/internal/domain/entity"
	"github.com/jfarias/trazabilidad-api/internal/domain/trace"
)

var testLocs = trace.Locations{VendorsID: 4, CustomersID: 5}

func TestClassifyMovement(t *testing.T) {
	cases := []struct {
		name string
		m    entity.Movement
		want entity.MovementKind
	}{
		{
			name: "origen en ubicación de proveedores",
			m:    entity.Movement{OriginLocation: entity.NewRelation(4, "Vendors")},
			want: entity.KindReception,
		},
		{
			name: "referencia de entrada",
			m:    entity.Movement{Reference: "WH/IN/00055"},
			want: entity.KindReception,
		},
		{
			name: "destino en ubicación de clientes",
			m:    entity.Movement{DestinationLocation: entity.NewRelation(5, "Customers")},
			want: entity.KindSale,
		},
		{
			name: "referencia de salida",
			m:    entity.Movement{Reference: "OUT/S00531"},
			want: entity.KindSale,
		},
		{
			name: "orden de fabricación",
			m:    entity.Movement{Reference: "WH/MO/00100"},
			want: entity.KindProcess,
		},
		{
			name: "sin señal reconocible",
			m:    entity.Movement{Reference: "AJUSTE-7"},
			want: entity.KindAdjustment,
		},
		{
			// El orden de evaluación es fijo: recepción gana a proceso aunque
			// la referencia también contenga el marcador de fabricación.
			name: "recepción gana a proceso",
			m: entity.Movement{
				Reference:      "MO-REPROCESO",
				OriginLocation: entity.NewRelation(4, "Vendors"),
			},
			want: entity.KindReception,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, trace.ClassifyMovement(tc.m, testLocs))
		})
	}
}

func TestClassifyMovement_UbicacionDeProduccion(t *testing.T) {
	locs := trace.Locations{VendorsID: 4, CustomersID: 5, ProductionIDs: map[int64]bool{9: true}}

	// Sin marcador de fabricación en la referencia: la ubicación manda.
	entrada := entity.Movement{Reference: "TRASLADO-1", DestinationLocation: entity.NewRelation(9, "Producción")}
	assert.Equal(t, entity.KindProcess, trace.ClassifyMovement(entrada, locs))

	salida := entity.Movement{Reference: "TRASLADO-2", OriginLocation: entity.NewRelation(9, "Producción")}
	assert.Equal(t, entity.KindProcess, trace.ClassifyMovement(salida, locs))

	// Con ProductionIDs nil la misma línea es un ajuste.
	assert.Equal(t, entity.KindAdjustment, trace.ClassifyMovement(entrada, testLocs))
}
