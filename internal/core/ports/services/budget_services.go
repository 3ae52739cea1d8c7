package services

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// BudgetSvcFacade is the budget entry lifecycle: upsert with derived-field
// integrity, the approval workflow, and the batch processor. Every mutation
// consults the workflow policy table and appends an audit entry atomically
// with the data change.
type BudgetSvcFacade interface {
	// Upsert creates or updates the entry for the natural key. The returned
	// bool is true when a new entry was created.
	Upsert(ctx context.Context, req dto.UpsertBudgetRequest, actor domain.Actor) (*domain.BudgetEntry, bool, error)
	GetByID(ctx context.Context, budgetID string) (*domain.BudgetEntry, error)
	List(ctx context.Context, filter domain.BudgetFilter) ([]domain.BudgetEntry, error)
	// MonthGrid returns all twelve months of one category/year, with virtual
	// zero rows for months that have no stored entry.
	MonthGrid(ctx context.Context, categoryID string, year int) (*dto.MonthGridResponse, error)
	Approve(ctx context.Context, budgetID string, actor domain.Actor) (*domain.BudgetEntry, error)
	Reject(ctx context.Context, budgetID, reason string, actor domain.Actor) (*domain.BudgetEntry, error)
	Delete(ctx context.Context, budgetID string, actor domain.Actor) error
	// FilterValues serves the SPA filter dropdowns from a TTL cache.
	FilterValues(ctx context.Context) (*domain.FilterValues, error)

	BatchUpsert(ctx context.Context, items []dto.BatchBudgetItem, actor domain.Actor) (*dto.BatchUpsertResult, error)
	BatchSubmit(ctx context.Context, ids []string, actor domain.Actor) (*dto.BatchActionResult, error)
	BatchApprove(ctx context.Context, ids []string, actor domain.Actor) (*dto.BatchActionResult, error)
	BatchReject(ctx context.Context, ids []string, reason string, actor domain.Actor) (*dto.BatchRejectResult, error)
}
