package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
	"github.com/orcaplan/orcaplan-backend/internal/middleware"
)

// BatchUpsert processes each item in its own nested transaction scope, so a
// failing item rolls back alone while the rest of the batch and the final
// audit entry commit together.
func (s *budgetService) BatchUpsert(ctx context.Context, items []dto.BatchBudgetItem, actor domain.Actor) (*dto.BatchUpsertResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	// Gestores are admitted into the batch for post-approval actualization;
	// each item resolves its own permission against the entry it targets.
	if err := domain.Authorize(domain.ActionEdit, actor.Role); err != nil && actor.Role != domain.RoleGestor {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: lista de orçamentos vazia", apperrors.ErrValidation)
	}

	result := &dto.BatchUpsertResult{
		Errors:  []string{},
		Entries: []dto.BatchEntryID{},
	}
	err := s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		for i, item := range items {
			var (
				created bool
				entryID string
			)
			itemErr := tx.RunAtomic(ctx, func(itemTx portsrepo.TxRepositories) error {
				var err error
				created, entryID, err = s.applyBatchItem(ctx, itemTx, item, actor)
				return err
			})
			if itemErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("Item %d: %v", i+1, itemErr))
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			result.Entries = append(result.Entries, dto.BatchEntryID{ID: entryID})
		}

		details := domain.BatchUpsertDetails{
			Created: result.Created,
			Updated: result.Updated,
			Errors:  result.Errors,
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Atualização em lote de orçamentos", tableBudgets, nil, details))
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%d orçamentos criados, %d atualizados", result.Created, result.Updated)
	if result.Created+result.Updated > 0 {
		s.filterCache.Invalidate(filterCacheKeyBudgets)
	}
	logger.Info("Batch upsert processed",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// applyBatchItem upserts one batch item through the given transaction scope.
// It mirrors the single-item rules, but skips the per-item audit entry; the
// batch summary entry covers the whole sweep.
func (s *budgetService) applyBatchItem(ctx context.Context, tx portsrepo.TxRepositories, item dto.BatchBudgetItem, actor domain.Actor) (bool, string, error) {
	if item.CategoryID == "" {
		return false, "", fmt.Errorf("%w: id_categoria é obrigatório", apperrors.ErrValidation)
	}
	month, err := item.Month.Normalize()
	if err != nil {
		return false, "", err
	}
	if item.Year < 1 {
		return false, "", fmt.Errorf("%w: ano %d inválido", apperrors.ErrValidation, item.Year)
	}
	status, err := normalizeUpsertStatus(item.Status)
	if err != nil {
		return false, "", err
	}

	if _, err := tx.Categories().FindByID(ctx, item.CategoryID); err != nil {
		return false, "", err
	}

	existing, err := tx.Budgets().FindByNaturalKey(ctx, item.CategoryID, month, item.Year)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return false, "", err
	}

	now := time.Now().UTC()
	if existing == nil {
		if err := domain.Authorize(domain.ActionEdit, actor.Role); err != nil {
			return false, "", err
		}
		entry := domain.BudgetEntry{
			BudgetID:   uuid.NewString(),
			CategoryID: item.CategoryID,
			Month:      month,
			Year:       item.Year,
			Status:     domain.StatusDraft,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actor.UserID,
			},
		}
		if item.Planned != nil {
			entry.Planned = *item.Planned
		}
		if item.Actual != nil {
			entry.Actual = *item.Actual
		}
		if status != nil {
			entry.Status = *status
		}
		entry.Variance = entry.ComputeVariance()
		if err := tx.Budgets().Save(ctx, entry); err != nil {
			return false, "", err
		}
		return true, entry.BudgetID, nil
	}

	if existing.Status == domain.StatusApproved {
		actualOnly := item.Actual != nil && item.Planned == nil && status == nil
		if !s.policy.MayEditApproved(actor.Role, actualOnly) {
			return false, "", fmt.Errorf("%w: orçamento aprovado não pode ser alterado", apperrors.ErrForbidden)
		}
	} else if err := domain.Authorize(domain.ActionEdit, actor.Role); err != nil {
		return false, "", err
	}

	updated := *existing
	updated.Category = nil
	if item.Planned != nil {
		updated.Planned = *item.Planned
	}
	if item.Actual != nil {
		updated.Actual = *item.Actual
	}
	if status != nil && existing.Status != domain.StatusApproved {
		updated.Status = *status
	}
	updated.Variance = updated.ComputeVariance()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID
	if err := tx.Budgets().Update(ctx, updated); err != nil {
		return false, "", err
	}
	return false, updated.BudgetID, nil
}

// BatchSubmit moves the given entries to pending approval. Entries not in a
// submittable status are skipped silently; unknown ids are reported.
func (s *budgetService) BatchSubmit(ctx context.Context, ids []string, actor domain.Actor) (*dto.BatchActionResult, error) {
	if err := domain.Authorize(domain.ActionSubmit, actor.Role); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: lista de ids vazia", apperrors.ErrValidation)
	}

	result := &dto.BatchActionResult{Errors: []string{}}
	err := s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		refs := make([]domain.EntryRef, 0, len(ids))
		for _, id := range ids {
			entry, err := tx.Budgets().FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					result.Errors = append(result.Errors, fmt.Sprintf("Orçamento %s não encontrado", id))
					continue
				}
				return err
			}
			if !domain.CanTransition(domain.ActionSubmit, entry.Status) {
				continue
			}

			now := time.Now().UTC()
			entry.Status = domain.StatusPendingApproval
			entry.ApprovedBy = nil
			entry.ApprovedAt = nil
			entry.LastUpdatedAt = now
			entry.LastUpdatedBy = actor.UserID
			entry.Category = nil
			if err := tx.Budgets().Update(ctx, *entry); err != nil {
				return err
			}

			cat, err := tx.Categories().FindByID(ctx, entry.CategoryID)
			if err != nil {
				return err
			}
			refs = append(refs, domain.NewEntryRef(*entry, *cat))
			result.UpdatedCount++
		}

		if result.UpdatedCount == 0 {
			return nil
		}
		details := domain.BatchSubmitDetails{
			Submitted: refs,
			Total:     result.UpdatedCount,
			Errors:    len(result.Errors),
			Timestamp: time.Now().UTC(),
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Envio em lote para aprovação", tableBudgets, nil, details))
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%d orçamentos enviados para aprovação", result.UpdatedCount)
	if result.UpdatedCount > 0 {
		s.filterCache.Invalidate(filterCacheKeyBudgets)
	}
	return result, nil
}

// BatchApprove approves the given pending entries. Entries not pending are
// skipped silently, including already-approved ones; unknown ids are reported.
func (s *budgetService) BatchApprove(ctx context.Context, ids []string, actor domain.Actor) (*dto.BatchActionResult, error) {
	if err := domain.Authorize(domain.ActionApprove, actor.Role); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: lista de ids vazia", apperrors.ErrValidation)
	}

	result := &dto.BatchActionResult{Errors: []string{}}
	err := s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		approvedIDs := make([]string, 0, len(ids))
		for _, id := range ids {
			entry, err := tx.Budgets().FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					result.Errors = append(result.Errors, fmt.Sprintf("Orçamento %s não encontrado", id))
					continue
				}
				return err
			}
			if !domain.CanTransition(domain.ActionApprove, entry.Status) {
				continue
			}

			now := time.Now().UTC()
			entry.Status = domain.StatusApproved
			entry.ApprovedBy = &actor.UserID
			entry.ApprovedAt = &now
			entry.LastUpdatedAt = now
			entry.LastUpdatedBy = actor.UserID
			entry.Category = nil
			if err := tx.Budgets().Update(ctx, *entry); err != nil {
				return err
			}
			approvedIDs = append(approvedIDs, entry.BudgetID)
			result.UpdatedCount++
		}

		if result.UpdatedCount == 0 {
			return nil
		}
		details := domain.BatchApproveDetails{
			IDs:     approvedIDs,
			Updated: result.UpdatedCount,
			Errors:  len(result.Errors),
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Aprovação em lote de orçamentos", tableBudgets, nil, details))
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%d orçamentos aprovados", result.UpdatedCount)
	if result.UpdatedCount > 0 {
		s.filterCache.Invalidate(filterCacheKeyBudgets)
	}
	return result, nil
}

// BatchReject rejects the given entries with one shared reason. The audit
// payload carries the display fields of every rejected entry so the admin's
// review screen can be rebuilt from the log alone.
func (s *budgetService) BatchReject(ctx context.Context, ids []string, reason string, actor domain.Actor) (*dto.BatchRejectResult, error) {
	if err := domain.Authorize(domain.ActionReject, actor.Role); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: lista de ids vazia", apperrors.ErrValidation)
	}
	if reason == "" {
		reason = domain.DefaultRejectReason
	}

	result := &dto.BatchRejectResult{
		BatchActionResult: dto.BatchActionResult{Errors: []string{}},
		Detail:            []domain.EntryRef{},
	}
	err := s.uow.RunAtomic(ctx, func(tx portsrepo.TxRepositories) error {
		for _, id := range ids {
			entry, err := tx.Budgets().FindByID(ctx, id)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					result.Errors = append(result.Errors, fmt.Sprintf("Orçamento %s não encontrado", id))
					continue
				}
				return err
			}
			if !domain.CanTransition(domain.ActionReject, entry.Status) {
				continue
			}

			now := time.Now().UTC()
			entry.Status = domain.StatusRejected
			entry.ApprovedBy = nil
			entry.ApprovedAt = nil
			entry.LastUpdatedAt = now
			entry.LastUpdatedBy = actor.UserID
			entry.Category = nil
			if err := tx.Budgets().Update(ctx, *entry); err != nil {
				return err
			}

			cat, err := tx.Categories().FindByID(ctx, entry.CategoryID)
			if err != nil {
				return err
			}
			result.Detail = append(result.Detail, domain.NewEntryRef(*entry, *cat))
			result.UpdatedCount++
		}

		if result.UpdatedCount == 0 {
			return nil
		}
		details := domain.BatchRejectDetails{
			Rejected:   result.Detail,
			Total:      result.UpdatedCount,
			Reason:     reason,
			GestorName: actor.Name,
			Errors:     len(result.Errors),
			Timestamp:  time.Now().UTC(),
		}
		return tx.Audit().Append(ctx, newAuditEntry(actor, "Reprovação em lote de orçamentos", tableBudgets, nil, details))
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("%d orçamentos reprovados", result.UpdatedCount)
	if result.UpdatedCount > 0 {
		s.filterCache.Invalidate(filterCacheKeyBudgets)
	}
	return result, nil
}
