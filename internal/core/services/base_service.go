package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// Cache keys for the filter dropdown values. Budget and category mutations
// both invalidate the budget key, since category fields surface in the budget
// filters.
const (
	filterCacheKeyBudgets    = "filtros:orcamentos"
	filterCacheKeyCategories = "filtros:categorias"
)

// Tables named in audit entries.
const (
	tableBudgets    = "orcamentos"
	tableCategories = "categorias"
)

// newAuditEntry builds one audit record for the given actor and payload.
func newAuditEntry(actor domain.Actor, action string, table string, affectedID *string, details domain.AuditDetails) domain.AuditEntry {
	return domain.AuditEntry{
		AuditID:       uuid.NewString(),
		ActorID:       actor.UserID,
		ActorName:     actor.Name,
		Action:        action,
		Kind:          details.AuditKind(),
		AffectedTable: table,
		AffectedID:    affectedID,
		Timestamp:     time.Now().UTC(),
		Details:       details,
	}
}

// uniqueSorted deduplicates and sorts, dropping empty strings. Used to roll up
// the display facets of reconstructed audit groups.
func uniqueSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
