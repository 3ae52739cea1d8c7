package services

import (
	"context"
	"io"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// CategorySvcFacade manages the category catalog that budget entries hang off.
type CategorySvcFacade interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest, actor domain.Actor) (*domain.Category, error)
	Update(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, actor domain.Actor) (*domain.Category, error)
	GetByID(ctx context.Context, categoryID string) (*domain.Category, error)
	List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error)
	// Delete refuses to remove a category that still has budget entries.
	Delete(ctx context.Context, categoryID string, actor domain.Actor) error
	FilterValues(ctx context.Context) (*domain.CategoryFilterValues, error)
	// ImportSpreadsheet loads categories from an .xlsx upload, skipping rows
	// that already exist.
	ImportSpreadsheet(ctx context.Context, r io.Reader, filename string, actor domain.Actor) (*dto.ImportResult, error)
}
