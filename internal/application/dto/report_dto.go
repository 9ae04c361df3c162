package dto

import "github.com/shopspring/decimal"

// DemandReconciliationDTO clasificación de un artículo frente a la demanda
// reportada. Status vacío y Suppressed=true cuando la demanda es cero o
// desconocida: no se inventa una clasificación.
type DemandReconciliationDTO struct {
	ItemID         string          `json:"item_id"`
	ItemName       string          `json:"item_name"`
	GroupKey       string          `json:"group_key"`
	Supply         decimal.Decimal `json:"supply"`
	Demand         decimal.Decimal `json:"demand"`
	Status         string          `json:"status,omitempty"` // DEFICIT | ADEQUATE | EXCESS
	Suppressed     bool            `json:"suppressed,omitempty"`
	BelowThreshold bool            `json:"below_threshold"`
}

// DemandReportResponse reporte de conciliación para un grupo (grado, aula).
type DemandReportResponse struct {
	GroupKey string                    `json:"group_key"`
	Rows     []DemandReconciliationDTO `json:"rows"`
}
