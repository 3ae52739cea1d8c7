package services

import (
	"context"
	"fmt"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// topGroupsLimit bounds the "grupos críticos" panel on the dashboard.
const topGroupsLimit = 5

type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{reportingRepo: reportingRepo}
}

// Ensure reportingService implements the portssvc.ReportingSvcFacade interface
var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// Dashboard assembles the consolidated dashboard payload, deriving the
// critical-month picks from the monthly series in-process.
func (s *reportingService) Dashboard(ctx context.Context, filter domain.ReportFilter) (*dto.DashboardResponse, error) {
	totals, err := s.reportingRepo.Totals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate totals: %w", err)
	}

	series, err := s.reportingRepo.MonthlySeries(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate monthly series: %w", err)
	}

	groups, err := s.reportingRepo.GroupVariances(ctx, filter, topGroupsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate group variances: %w", err)
	}

	costCenters, err := s.reportingRepo.CostCenterRollup(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate cost centers: %w", err)
	}

	return &dto.DashboardResponse{
		Totals:         *totals,
		MonthlySeries:  series,
		CriticalMonths: domain.ComputeCriticalMonths(series),
		TopGroups:      groups,
		CostCenters:    costCenters,
	}, nil
}

func (s *reportingService) KPIs(ctx context.Context, filter domain.ReportFilter) (*domain.KPIs, error) {
	kpis, err := s.reportingRepo.KPIs(ctx, filter.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate kpis: %w", err)
	}
	return kpis, nil
}
