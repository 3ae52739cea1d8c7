package services

import (
	"github.com/orcaplan/orcaplan-backend/internal/cache"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// The filter caches are shared: budget and category mutations both
	// invalidate through them.
	filterCache := cache.NewTTLCache[domain.FilterValues](cfg.FilterCacheTTL)
	catCache := cache.NewTTLCache[domain.CategoryFilterValues](cfg.FilterCacheTTL)

	policy := domain.ApprovedEditPolicy{AdminOverride: cfg.ApprovedEditOverride}

	container := &portssvc.ServiceContainer{}
	container.BudgetSvc = NewBudgetService(repos, policy, filterCache)
	container.CategorySvc = NewCategoryService(repos, filterCache, catCache)
	container.AuditSvc = NewAuditService(repos)
	container.ReportingSvc = NewReportingService(repos.Reporting)
	container.UserSvc = NewUserService(repos.User)
	container.AuthSvc = NewAuthService(cfg, repos.User)
	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.BudgetSvcFacade    = (*budgetService)(nil)
	_ portssvc.CategorySvcFacade  = (*categoryService)(nil)
	_ portssvc.AuditSvcFacade     = (*auditService)(nil)
	_ portssvc.ReportingSvcFacade = (*reportingService)(nil)
)
