package repositories

import (
	"context"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// AuditRepository is the append-only audit sink. Append failures must never
// be swallowed into a success path; within a unit of work the append commits
// or rolls back together with the data mutation.
type AuditRepository interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	// List returns matching entries plus the total match count for pagination.
	List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error)
	FindByID(ctx context.Context, auditID string) (*domain.AuditEntry, error)
	// ListByKind serves the submissions/rejections reconstructions.
	ListByKind(ctx context.Context, kind domain.AuditKind, affectedTable string) ([]domain.AuditEntry, error)
	Summary(ctx context.Context) (*domain.AuditSummary, error)
}
