package repositories

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// BudgetRepository persists budget entries and owns derived-field integrity:
// implementations recompute the variance from planned/actual as part of every
// write so it can never drift from its inputs, including via batch paths.
type BudgetRepository interface {
	// Save inserts a new entry. A natural-key collision surfaces as
	// apperrors.ErrDuplicate, never as a raw database error.
	Save(ctx context.Context, entry domain.BudgetEntry) error
	// Update rewrites an existing entry by surrogate id.
	Update(ctx context.Context, entry domain.BudgetEntry) error
	FindByID(ctx context.Context, budgetID string) (*domain.BudgetEntry, error)
	FindByNaturalKey(ctx context.Context, categoryID string, month domain.Month, year int) (*domain.BudgetEntry, error)
	// List joins the category registry so category-side filters apply.
	List(ctx context.Context, filter domain.BudgetFilter) ([]domain.BudgetEntry, error)
	ListByCategoryYear(ctx context.Context, categoryID string, year int) ([]domain.BudgetEntry, error)
	Delete(ctx context.Context, budgetID string) error
	ListFilterValues(ctx context.Context) (*domain.FilterValues, error)
}
