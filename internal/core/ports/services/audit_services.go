package services

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

// AuditSvcFacade reads the append-only audit trail and reconstructs the
// workflow views (submission and rejection groups) from it.
type AuditSvcFacade interface {
	List(ctx context.Context, filter domain.AuditFilter) (*dto.AuditLogListResponse, error)
	GetByID(ctx context.Context, auditID string) (*dto.AuditLogResponse, error)
	Summary(ctx context.Context) (*domain.AuditSummary, error)
	// Submissions groups pending entries by the batch submit event that put
	// them there, plus one virtual group for pending entries no event covers.
	Submissions(ctx context.Context) ([]dto.SubmissionGroup, error)
	// Rejections lists batch and individual reject events with the rejected
	// entries still in rejected state.
	Rejections(ctx context.Context) ([]dto.RejectionGroup, error)
	// ExportCSV streams the filtered audit trail as semicolon-separated CSV.
	ExportCSV(ctx context.Context, filter domain.AuditFilter) ([]byte, string, error)
}
