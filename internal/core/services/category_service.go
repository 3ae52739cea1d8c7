package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/cache"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
)

// categoryService manages the category catalog. Category writes invalidate
// the budget filter cache too, since category fields surface in those filters.
type categoryService struct {
	categoryRepo portsrepo.CategoryRepository
	uow          portsrepo.UnitOfWork
	filterCache  *cache.TTLCache[domain.FilterValues]
	catCache     *cache.TTLCache[domain.CategoryFilterValues]
}

// NewCategoryService creates a new category service.
func NewCategoryService(repos portsrepo.RepositoryProvider, filterCache *cache.TTLCache[domain.FilterValues], catCache *cache.TTLCache[domain.CategoryFilterValues]) portssvc.CategorySvcFacade {
	return &categoryService{
		categoryRepo: repos.Category,
		uow:          repos.UoW,
		filterCache:  filterCache,
		catCache:     catCache,
	}
}

// Ensure categoryService implements the portssvc.CategorySvcFacade interface
var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func requireAdmin(role domain.Role) error {
	if role != domain.RoleAdmin {
		return fmt.Errorf("%w: papel %q não pode gerenciar categorias", apperrors.ErrForbidden, role)
	}
	return nil
}

func (s *categoryService) invalidateCaches() {
	s.filterCache.Invalidate(filterCacheKeyBudgets)
	s.catCache.Invalidate(filterCacheKeyCategories)
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest, actor domain.Actor) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := requireAdmin(actor.Role); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.FindByUniqueTuple(ctx, req.Name, req.Group, req.ClassCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check category uniqueness: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: categoria %q já existe", apperrors.ErrDuplicate, req.Name)
	}

	now := time.Now().UTC()
	cat := domain.Category{
		CategoryID: uuid.NewString(),
		Name:       req.Name,
		UF:         req.UF,
		CostCenter: req.CostCenter,
		Group:      req.Group,
		ClassCode:  req.ClassCode,
		CostClass:  req.CostClass,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Categories().Save(ctx, cat); err != nil {
			return err
		}
		details := domain.CategoryWriteDetails{After: cat, Kind: domain.KindCategoryCreate}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Criação de categoria", tableCategories, &cat.CategoryID, details))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches()
	logger.Info("Category created", slog.String("category_id", cat.CategoryID))
	return &cat, nil
}

func (s *categoryService) Update(ctx context.Context, categoryID string, req dto.UpdateCategoryRequest, actor domain.Actor) (*domain.Category, error) {
	if err := requireAdmin(actor.Role); err != nil {
		return nil, err
	}

	existing, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if req.Name != nil {
		updated.Name = *req.Name
	}
	if req.UF != nil {
		updated.UF = *req.UF
	}
	if req.CostCenter != nil {
		updated.CostCenter = *req.CostCenter
	}
	if req.Group != nil {
		updated.Group = *req.Group
	}
	if req.ClassCode != nil {
		updated.ClassCode = *req.ClassCode
	}
	if req.CostClass != nil {
		updated.CostClass = *req.CostClass
	}
	updated.LastUpdatedAt = time.Now().UTC()
	updated.LastUpdatedBy = actor.UserID

	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Categories().Update(ctx, updated); err != nil {
			return err
		}
		details := domain.CategoryWriteDetails{Before: existing, After: updated, Kind: domain.KindCategoryUpdate}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Atualização de categoria", tableCategories, &updated.CategoryID, details))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCaches()
	return &updated, nil
}

func (s *categoryService) GetByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	cat, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return cat, nil
}

func (s *categoryService) List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	cats, err := s.categoryRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if cats == nil {
		return []domain.Category{}, nil
	}
	return cats, nil
}

// Delete removes a category, refusing while budget entries still reference
// it. The FK RESTRICT in the schema is the backstop for racing writers.
func (s *categoryService) Delete(ctx context.Context, categoryID string, actor domain.Actor) error {
	if err := requireAdmin(actor.Role); err != nil {
		return err
	}

	cat, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return err
	}

	linked, err := s.categoryRepo.CountBudgetEntries(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to count linked budget entries: %w", err)
	}
	if linked > 0 {
		return fmt.Errorf("%w: categoria possui %d orçamentos vinculados", apperrors.ErrConflict, linked)
	}

	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Categories().Delete(ctx, categoryID); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Exclusão de categoria", tableCategories, &categoryID, domain.CategoryDeleteDetails{Deleted: *cat}))
	})
	if err != nil {
		return err
	}

	s.invalidateCaches()
	return nil
}

func (s *categoryService) FilterValues(ctx context.Context) (*domain.CategoryFilterValues, error) {
	if cached, ok := s.catCache.Get(filterCacheKeyCategories); ok {
		return &cached, nil
	}

	values, err := s.categoryRepo.ListFilterValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list category filter values: %w", err)
	}
	s.catCache.Set(filterCacheKeyCategories, *values)
	return values, nil
}

// importColumns are the spreadsheet header labels the import recognizes.
var importColumns = []string{"categoria", "uf", "master", "grupo", "cod class", "classe custo"}

// ImportSpreadsheet loads categories from the first sheet of an .xlsx file.
// Rows whose (name, group, class code) tuple already exists are skipped; rows
// without a name are reported as errors. Per-row failures never abort the
// import.
func (s *categoryService) ImportSpreadsheet(ctx context.Context, r io.Reader, filename string, actor domain.Actor) (*dto.ImportResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if err := requireAdmin(actor.Role); err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: arquivo xlsx inválido: %v", apperrors.ErrValidation, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: planilha sem abas", apperrors.ErrValidation)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: planilha sem linhas de dados", apperrors.ErrValidation)
	}

	// Resolve column positions from the header row.
	cols := make(map[string]int, len(importColumns))
	for _, k := range importColumns {
		cols[k] = -1
	}
	for i, header := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	if cols["categoria"] == -1 {
		return nil, fmt.Errorf("%w: coluna CATEGORIA não encontrada", apperrors.ErrValidation)
	}

	cell := func(row []string, key string) string {
		idx := cols[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &dto.ImportResult{Errors: []string{}}
	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		for n, row := range rows[1:] {
			rowNum := n + 2 // 1-based, after the header
			name := cell(row, "categoria")
			if name == "" {
				result.Errors = append(result.Errors, fmt.Sprintf("Linha %d: categoria vazia", rowNum))
				continue
			}

			cat := domain.Category{
				CategoryID: uuid.NewString(),
				Name:       name,
				UF:         cell(row, "uf"),
				CostCenter: cell(row, "master"),
				Group:      cell(row, "grupo"),
				ClassCode:  cell(row, "cod class"),
				CostClass:  cell(row, "classe custo"),
			}

			rowErr := tx.RunAtomic(ctx, func(rowTx portsrepo.TxRepositories) error {
				existing, err := rowTx.Categories().FindByUniqueTuple(ctx, cat.Name, cat.Group, cat.ClassCode)
				if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
					return err
				}
				if existing != nil {
					// Re-imports of the same sheet are a no-op.
					return nil
				}

				now := time.Now().UTC()
				cat.AuditFields = domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     actor.UserID,
					LastUpdatedAt: now,
					LastUpdatedBy: actor.UserID,
				}
				if err := rowTx.Categories().Save(ctx, cat); err != nil {
					return err
				}
				result.Imported++
				return nil
			})
			if rowErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Linha %d: %v", rowNum, rowErr))
			}
		}

		details := domain.CategoryImportDetails{
			Imported: result.Imported,
			Errors:   len(result.Errors),
			Filename: filename,
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Importação de categorias", tableCategories, nil, details))
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%d categorias importadas", result.Imported)
	if result.Imported > 0 {
		s.invalidateCaches()
	}
	logger.Info("Category import processed",
		slog.String("filename", filename),
		slog.Int("imported", result.Imported),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}
