package repositories

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// ReportingRepository is the read-only aggregation surface behind dashboards.
// It reads already-consistent data; no invariants beyond standard filtering.
type ReportingRepository interface {
	Totals(ctx context.Context, filter domain.ReportFilter) (*domain.Totals, error)
	MonthlySeries(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthTotals, error)
	GroupVariances(ctx context.Context, filter domain.ReportFilter, limit int) ([]domain.GroupTotals, error)
	CostCenterRollup(ctx context.Context, filter domain.ReportFilter) ([]domain.CostCenterTotals, error)
	KPIs(ctx context.Context, year int) (*domain.KPIs, error)
}
