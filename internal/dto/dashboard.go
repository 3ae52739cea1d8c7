package dto

import "github.com/orcaplan/orcaplan-backend/internal/core/domain"

// DashboardResponse is the consolidated dashboard payload.
type DashboardResponse struct {
	Totals         domain.Totals             `json:"totais"`
	MonthlySeries  []domain.MonthTotals      `json:"dados_mensais"`
	CriticalMonths domain.CriticalMonths     `json:"meses_criticos"`
	TopGroups      []domain.GroupTotals      `json:"grupos_criticos"`
	CostCenters    []domain.CostCenterTotals `json:"centros_custo"`
}
