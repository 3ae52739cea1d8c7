package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// virtualGroupActor labels the synthetic submissions group that holds pending
// entries no recorded batch event covers (e.g. imported data).
const virtualGroupActor = "Sistema"

// auditService reads the append-only trail. It never writes: audit entries
// are appended by the mutating services inside their own transactions.
type auditService struct {
	auditRepo    portsrepo.AuditRepository
	budgetRepo   portsrepo.BudgetRepository
	categoryRepo portsrepo.CategoryRepository
}

// NewAuditService creates a new audit service.
func NewAuditService(repos portsrepo.RepositoryProvider) portssvc.AuditSvcFacade {
	return &auditService{
		auditRepo:    repos.Audit,
		budgetRepo:   repos.Budget,
		categoryRepo: repos.Category,
	}
}

// Ensure auditService implements the portssvc.AuditSvcFacade interface
var _ portssvc.AuditSvcFacade = (*auditService)(nil)

func (s *auditService) List(ctx context.Context, filter domain.AuditFilter) (*dto.AuditLogListResponse, error) {
	entries, total, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	logs := make([]dto.AuditLogResponse, len(entries))
	for i := range entries {
		logs[i] = dto.ToAuditLogResponse(&entries[i])
	}

	page := 1
	perPage := filter.Limit
	if filter.Limit > 0 {
		page = filter.Offset/filter.Limit + 1
	}
	return &dto.AuditLogListResponse{
		Logs:    logs,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

func (s *auditService) GetByID(ctx context.Context, auditID string) (*dto.AuditLogResponse, error) {
	entry, err := s.auditRepo.FindByID(ctx, auditID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToAuditLogResponse(entry)
	return &resp, nil
}

func (s *auditService) Summary(ctx context.Context) (*domain.AuditSummary, error) {
	summary, err := s.auditRepo.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build audit summary: %w", err)
	}
	return summary, nil
}

// refFacets rolls up the display facets of a set of entry refs.
func refFacets(refs []domain.EntryRef) (costCenters, ufs, categories []string) {
	cc := make([]string, 0, len(refs))
	uf := make([]string, 0, len(refs))
	cat := make([]string, 0, len(refs))
	for _, r := range refs {
		cc = append(cc, r.CostCenter)
		uf = append(uf, r.UF)
		cat = append(cat, r.CategoryName)
	}
	return uniqueSorted(cc), uniqueSorted(uf), uniqueSorted(cat)
}

// Submissions rebuilds the gestor's review screen from the audit trail. Each
// batch submit event becomes one group, trimmed to the entries still pending;
// pending entries covered by no event are collected into one virtual group.
func (s *auditService) Submissions(ctx context.Context) ([]dto.SubmissionGroup, error) {
	logs, err := s.auditRepo.ListByKind(ctx, domain.KindBatchSubmit, tableBudgets)
	if err != nil {
		return nil, fmt.Errorf("failed to list submit events: %w", err)
	}

	groups := []dto.SubmissionGroup{}
	covered := make(map[string]bool)
	for i := range logs {
		log := logs[i]
		details, ok := log.Details.(domain.BatchSubmitDetails)
		if !ok {
			continue
		}

		pending := make([]domain.EntryRef, 0, len(details.Submitted))
		for _, ref := range details.Submitted {
			entry, err := s.budgetRepo.FindByID(ctx, ref.BudgetID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return nil, err
			}
			if entry.Status != domain.StatusPendingApproval {
				continue
			}
			covered[ref.BudgetID] = true
			pending = append(pending, ref)
		}
		if len(pending) == 0 {
			continue
		}

		logID := log.AuditID
		ts := log.Timestamp
		cc, uf, cats := refFacets(pending)
		groups = append(groups, dto.SubmissionGroup{
			LogID:       &logID,
			Date:        &ts,
			AdminName:   log.ActorName,
			Total:       len(pending),
			Entries:     pending,
			CostCenters: cc,
			UFs:         uf,
			Categories:  cats,
		})
	}

	loose, err := s.budgetRepo.List(ctx, domain.BudgetFilter{Status: domain.StatusPendingApproval})
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	looseRefs := []domain.EntryRef{}
	for _, e := range loose {
		if covered[e.BudgetID] {
			continue
		}
		cat := domain.Category{}
		if e.Category != nil {
			cat = *e.Category
		}
		looseRefs = append(looseRefs, domain.NewEntryRef(e, cat))
	}
	if len(looseRefs) > 0 {
		cc, uf, cats := refFacets(looseRefs)
		groups = append(groups, dto.SubmissionGroup{
			AdminName:   virtualGroupActor,
			Total:       len(looseRefs),
			Entries:     looseRefs,
			CostCenters: cc,
			UFs:         uf,
			Categories:  cats,
		})
	}

	return groups, nil
}

// Rejections rebuilds the admin's review screen: batch reject events plus
// individual rejections, each trimmed to entries still in rejected status.
func (s *auditService) Rejections(ctx context.Context) ([]dto.RejectionGroup, error) {
	groups := []dto.RejectionGroup{}

	batchLogs, err := s.auditRepo.ListByKind(ctx, domain.KindBatchReject, tableBudgets)
	if err != nil {
		return nil, fmt.Errorf("failed to list batch reject events: %w", err)
	}
	for i := range batchLogs {
		log := batchLogs[i]
		details, ok := log.Details.(domain.BatchRejectDetails)
		if !ok {
			continue
		}

		rejected := make([]domain.EntryRef, 0, len(details.Rejected))
		for _, ref := range details.Rejected {
			entry, err := s.budgetRepo.FindByID(ctx, ref.BudgetID)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return nil, err
			}
			if entry.Status != domain.StatusRejected {
				continue
			}
			rejected = append(rejected, ref)
		}
		if len(rejected) == 0 {
			continue
		}

		logID := log.AuditID
		ts := log.Timestamp
		cc, uf, cats := refFacets(rejected)
		groups = append(groups, dto.RejectionGroup{
			LogID:       &logID,
			Date:        &ts,
			GestorName:  details.GestorName,
			Total:       len(rejected),
			Reason:      details.Reason,
			Type:        "lote",
			Entries:     rejected,
			CostCenters: cc,
			UFs:         uf,
			Categories:  cats,
		})
	}

	singleLogs, err := s.auditRepo.ListByKind(ctx, domain.KindEntryReject, tableBudgets)
	if err != nil {
		return nil, fmt.Errorf("failed to list reject events: %w", err)
	}
	for i := range singleLogs {
		log := singleLogs[i]
		details, ok := log.Details.(domain.RejectDetails)
		if !ok {
			continue
		}

		current, err := s.budgetRepo.FindByID(ctx, details.Entry.BudgetID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if current.Status != domain.StatusRejected {
			continue
		}

		cat := domain.Category{}
		if found, err := s.categoryRepo.FindByID(ctx, details.Entry.CategoryID); err == nil {
			cat = *found
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		ref := domain.NewEntryRef(details.Entry, cat)

		logID := log.AuditID
		ts := log.Timestamp
		cc, uf, cats := refFacets([]domain.EntryRef{ref})
		groups = append(groups, dto.RejectionGroup{
			LogID:       &logID,
			Date:        &ts,
			GestorName:  log.ActorName,
			Total:       1,
			Reason:      details.Reason,
			Type:        "individual",
			Entries:     []domain.EntryRef{ref},
			CostCenters: cc,
			UFs:         uf,
			Categories:  cats,
		})
	}

	return groups, nil
}

// ExportCSV renders the filtered trail as semicolon-separated CSV, the format
// the finance team's spreadsheet tooling expects.
func (s *auditService) ExportCSV(ctx context.Context, filter domain.AuditFilter) ([]byte, string, error) {
	entries, _, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list audit logs for export: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	header := []string{"id_log", "timestamp", "id_usuario", "usuario_nome", "acao", "tabela_afetada", "id_registro", "detalhes"}
	if err := w.Write(header); err != nil {
		return nil, "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range entries {
		e := entries[i]
		affectedID := ""
		if e.AffectedID != nil {
			affectedID = *e.AffectedID
		}
		detailsJSON, err := json.Marshal(e.Details)
		if err != nil {
			return nil, "", fmt.Errorf("failed to serialize audit details: %w", err)
		}
		row := []string{
			e.AuditID,
			e.Timestamp.Format(time.RFC3339),
			e.ActorID,
			e.ActorName,
			e.Action,
			e.AffectedTable,
			affectedID,
			string(detailsJSON),
		}
		if err := w.Write(row); err != nil {
			return nil, "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("failed to flush csv: %w", err)
	}

	filename := fmt.Sprintf("logs_export_%s.csv", time.Now().UTC().Format("20060102_150405"))
	return buf.Bytes(), filename, nil
}
