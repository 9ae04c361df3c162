package demand_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tu-usuario/almacen-escolar/internal/domain/demand"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		supply string
		demand string
		want   demand.Status
		ok     bool
	}{
		{"deficit clasico", "40", "50", demand.StatusDeficit, true},
		{"exceso", "80", "50", demand.StatusExcess, true},
		{"exacto es adecuado", "50", "50", demand.StatusAdequate, true},
		{"oferta cero con demanda", "0", "10", demand.StatusDeficit, true},
		{"fraccionario", "10.5", "10.25", demand.StatusExcess, true},
		{"demanda cero se suprime", "40", "0", "", false},
		{"demanda negativa se suprime", "40", "-5", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := demand.Classify(decimal.RequireFromString(tt.supply), decimal.RequireFromString(tt.demand))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
