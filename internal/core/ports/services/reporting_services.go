package services

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// ReportingSvcFacade aggregates budget data for the dashboard surfaces.
type ReportingSvcFacade interface {
	Dashboard(ctx context.Context, filter domain.ReportFilter) (*dto.DashboardResponse, error)
	KPIs(ctx context.Context, filter domain.ReportFilter) (*domain.KPIs, error)
}
