package repositories

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// CategoryRepository persists the cost-center reference data.
type CategoryRepository interface {
	// Save inserts a new category. A (name, group, class-code) collision
	// surfaces as apperrors.ErrDuplicate.
	Save(ctx context.Context, cat domain.Category) error
	Update(ctx context.Context, cat domain.Category) error
	FindByID(ctx context.Context, categoryID string) (*domain.Category, error)
	FindByUniqueTuple(ctx context.Context, name, group, classCode string) (*domain.Category, error)
	List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
	// Delete removes the category. Callers must first check linked budget
	// entries; the FK RESTRICT is the backstop.
	Delete(ctx context.Context, categoryID string) error
	CountBudgetEntries(ctx context.Context, categoryID string) (int, error)
	ListFilterValues(ctx context.Context) (*domain.CategoryFilterValues, error)
}
