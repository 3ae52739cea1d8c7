package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/cache"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
)

// budgetService implements the budget entry lifecycle and the batch
// processor. All mutations run inside a unit of work so the audit append
// commits or rolls back together with the data change.
type budgetService struct {
	budgetRepo   portsrepo.BudgetRepository
	categoryRepo portsrepo.CategoryRepository
	uow          portsrepo.UnitOfWork
	policy       domain.ApprovedEditPolicy
	filterCache  *cache.TTLCache[domain.FilterValues]
}

// NewBudgetService creates a new budget service.
func NewBudgetService(repos portsrepo.RepositoryProvider, policy domain.ApprovedEditPolicy, filterCache *cache.TTLCache[domain.FilterValues]) portssvc.BudgetSvcFacade {
	return &budgetService{
		budgetRepo:   repos.Budget,
		categoryRepo: repos.Category,
		uow:          repos.UoW,
		policy:       policy,
		filterCache:  filterCache,
	}
}

// Ensure budgetService implements the portssvc.BudgetSvcFacade interface
var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// normalizeUpsertStatus validates an explicit status from an upsert payload.
// Approval cannot be reached by setting the field directly; only the approval
// operations may produce an approved entry.
func normalizeUpsertStatus(raw *string) (*domain.BudgetStatus, error) {
	if raw == nil {
		return nil, nil
	}
	st := domain.BudgetStatus(*raw)
	if !st.IsValid() {
		return nil, fmt.Errorf("%w: status %q inválido", apperrors.ErrValidation, *raw)
	}
	if st == domain.StatusApproved {
		return nil, fmt.Errorf("%w: aprovação só é possível pelo fluxo de aprovação", apperrors.ErrValidation)
	}
	return &st, nil
}

// Upsert creates or updates the entry identified by (category, month, year).
func (s *budgetService) Upsert(ctx context.Context, req dto.UpsertBudgetRequest, actor domain.Actor) (*domain.BudgetEntry, bool, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	month, err := req.Month.Normalize()
	if err != nil {
		return nil, false, err
	}
	if req.Year < 1 {
		return nil, false, fmt.Errorf("%w: ano %d inválido", apperrors.ErrValidation, req.Year)
	}
	status, err := normalizeUpsertStatus(req.Status)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.budgetRepo.FindByNaturalKey(ctx, req.CategoryID, month, req.Year)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up budget entry: %w", err)
	}

	cat, err := s.categoryRepo.FindByID(ctx, req.CategoryID)
	if err != nil {
		return nil, false, err
	}

	if existing == nil {
		entry, err := s.create(ctx, req, month, status, cat, actor)
		if err != nil {
			return nil, false, err
		}
		logger.Info("Budget entry created", slog.String("budget_id", entry.BudgetID))
		return entry, true, nil
	}

	entry, err := s.update(ctx, existing, req, status, cat, actor)
	if err != nil {
		return nil, false, err
	}
	logger.Info("Budget entry updated", slog.String("budget_id", entry.BudgetID))
	return entry, false, nil
}

func (s *budgetService) create(ctx context.Context, req dto.UpsertBudgetRequest, month domain.Month, status *domain.BudgetStatus, cat *domain.Category, actor domain.Actor) (*domain.BudgetEntry, error) {
	if err := domain.Authorize(domain.ActionEdit, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry := domain.BudgetEntry{
		BudgetID:   uuid.NewString(),
		CategoryID: req.CategoryID,
		Month:      month,
		Year:       req.Year,
		Status:     domain.StatusDraft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if req.Planned != nil {
		entry.Planned = *req.Planned
	}
	if req.Actual != nil {
		entry.Actual = *req.Actual
	}
	if status != nil {
		entry.Status = *status
	}
	entry.Variance = entry.ComputeVariance()

	details := domain.EntryWriteDetails{
		CategoryGroup: cat.Group,
		Month:         month,
		Year:          req.Year,
		Planned:       entry.Planned.String(),
		Actual:        entry.Actual.String(),
		Kind:          domain.KindEntryCreate,
	}
	err := s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Budgets().Save(ctx, entry); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Criação de orçamento", tableBudgets, &entry.BudgetID, details))
	})
	if err != nil {
		return nil, err
	}

	s.filterCache.Invalidate(filterCacheKeyBudgets)
	return &entry, nil
}

func (s *budgetService) update(ctx context.Context, existing *domain.BudgetEntry, req dto.UpsertBudgetRequest, status *domain.BudgetStatus, cat *domain.Category, actor domain.Actor) (*domain.BudgetEntry, error) {
	if existing.Status == domain.StatusApproved {
		actualOnly := req.Actual != nil && req.Planned == nil && status == nil
		if !s.policy.MayEditApproved(actor.Role, actualOnly) {
			return nil, fmt.Errorf("%w: orçamento aprovado não pode ser alterado", apperrors.ErrForbidden)
		}
	} else {
		if err := domain.Authorize(domain.ActionEdit, actor.Role); err != nil {
			return nil, err
		}
	}

	updated := *existing
	updated.Category = nil
	if req.Planned != nil {
		updated.Planned = *req.Planned
	}
	if req.Actual != nil {
		updated.Actual = *req.Actual
	}
	if status != nil && existing.Status != domain.StatusApproved {
		updated.Status = *status
	}
	updated.Variance = updated.ComputeVariance()
	now := time.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	details := domain.EntryWriteDetails{
		CategoryGroup: cat.Group,
		Month:         updated.Month,
		Year:          updated.Year,
		Planned:       updated.Planned.String(),
		Actual:        updated.Actual.String(),
		Kind:          domain.KindEntryUpdate,
	}
	if existing.Status == domain.StatusApproved {
		// Keep the full before/after so post-approval edits are reviewable.
		before := *existing
		before.Category = nil
		after := updated
		details.Before = &before
		details.After = &after
	}

	err := s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Budgets().Update(ctx, updated); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Atualização de orçamento", tableBudgets, &updated.BudgetID, details))
	})
	if err != nil {
		return nil, err
	}

	s.filterCache.Invalidate(filterCacheKeyBudgets)
	return &updated, nil
}

func (s *budgetService) GetByID(ctx context.Context, budgetID string) (*domain.BudgetEntry, error) {
	entry, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget entry: %w", err)
	}
	return entry, nil
}

func (s *budgetService) List(ctx context.Context, filter domain.BudgetFilter) ([]domain.BudgetEntry, error) {
	entries, err := s.budgetRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget entries: %w", err)
	}
	if entries == nil {
		return []domain.BudgetEntry{}, nil
	}
	return entries, nil
}

// MonthGrid assembles the twelve-month view of one category/year. Months
// without a stored entry come back as virtual zero rows in draft status with
// an empty id, so the SPA can render a full editable grid.
func (s *budgetService) MonthGrid(ctx context.Context, categoryID string, year int) (*dto.MonthGridResponse, error) {
	cat, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	entries, err := s.budgetRepo.ListByCategoryYear(ctx, categoryID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to list budget entries for grid: %w", err)
	}
	byMonth := make(map[domain.Month]*domain.BudgetEntry, len(entries))
	for i := range entries {
		byMonth[entries[i].Month] = &entries[i]
	}

	grid := make([]dto.BudgetResponse, 0, len(domain.Months))
	for _, m := range domain.Months {
		if e, ok := byMonth[m]; ok {
			grid = append(grid, dto.ToBudgetResponse(e))
			continue
		}
		grid = append(grid, dto.BudgetResponse{
			CategoryID: categoryID,
			Month:      m,
			Year:       year,
			Status:     string(domain.StatusDraft),
		})
	}

	return &dto.MonthGridResponse{
		Category: dto.ToCategoryResponse(cat),
		Entries:  grid,
	}, nil
}

func (s *budgetService) Approve(ctx context.Context, budgetID string, actor domain.Actor) (*domain.BudgetEntry, error) {
	if err := domain.Authorize(domain.ActionApprove, actor.Role); err != nil {
		return nil, err
	}

	entry, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	next, err := domain.ValidateTransition(domain.ActionApprove, entry.Status)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entry.Status = next
	entry.ApprovedBy = &actor.UserID
	entry.ApprovedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	snapshot := *entry
	snapshot.Category = nil
	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Budgets().Update(ctx, snapshot); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Aprovação de orçamento", tableBudgets, &snapshot.BudgetID, domain.ApproveDetails{Entry: snapshot}))
	})
	if err != nil {
		return nil, err
	}

	s.filterCache.Invalidate(filterCacheKeyBudgets)
	return entry, nil
}

func (s *budgetService) Reject(ctx context.Context, budgetID, reason string, actor domain.Actor) (*domain.BudgetEntry, error) {
	if err := domain.Authorize(domain.ActionReject, actor.Role); err != nil {
		return nil, err
	}

	entry, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	next, err := domain.ValidateTransition(domain.ActionReject, entry.Status)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = domain.DefaultRejectReason
	}

	now := time.Now().UTC()
	entry.Status = next
	// A rejection voids any previous approval.
	entry.ApprovedBy = nil
	entry.ApprovedAt = nil
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	snapshot := *entry
	snapshot.Category = nil
	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Budgets().Update(ctx, snapshot); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Reprovação de orçamento", tableBudgets, &snapshot.BudgetID, domain.RejectDetails{Entry: snapshot, Reason: reason}))
	})
	if err != nil {
		return nil, err
	}

	s.filterCache.Invalidate(filterCacheKeyBudgets)
	return entry, nil
}

func (s *budgetService) Delete(ctx context.Context, budgetID string, actor domain.Actor) error {
	if err := domain.Authorize(domain.ActionDelete, actor.Role); err != nil {
		return err
	}

	entry, err := s.budgetRepo.FindByID(ctx, budgetID)
	if err != nil {
		return err
	}
	if _, err := domain.ValidateTransition(domain.ActionDelete, entry.Status); err != nil {
		return err
	}

	snapshot := *entry
	snapshot.Category = nil
	err = s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		if err := tx.Budgets().Delete(ctx, budgetID); err != nil {
			return err
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Exclusão de orçamento", tableBudgets, &budgetID, domain.DeleteDetails{Deleted: snapshot}))
	})
	if err != nil {
		return err
	}

	s.filterCache.Invalidate(filterCacheKeyBudgets)
	return nil
}

func (s *budgetService) FilterValues(ctx context.Context) (*domain.FilterValues, error) {
	if cached, ok := s.filterCache.Get(filterCacheKeyBudgets); ok {
		return &cached, nil
	}

	values, err := s.budgetRepo.ListFilterValues(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list filter values: %w", err)
	}
	s.filterCache.Set(filterCacheKeyBudgets, *values)
	return values, nil
}
