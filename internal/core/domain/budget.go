package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetStatus is the workflow state of a budget entry. The Portuguese values
// are stored at rest and returned on the wire.
type BudgetStatus string

const (
	StatusDraft           BudgetStatus = "rascunho"
	StatusPendingApproval BudgetStatus = "aguardando_aprovacao"
	StatusApproved        BudgetStatus = "aprovado"
	StatusRejected        BudgetStatus = "reprovado"
)

// IsValid reports whether s is a known workflow status.
func (s BudgetStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusPendingApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// BudgetEntry is one category's planned/actual figures for one month/year
// ("orçamento"). Identity is the natural key (CategoryID, Month, Year);
// BudgetID is a surrogate for referencing.
//
// Variance is derived: it always equals Actual − Planned at rest. It is
// recomputed at the storage boundary on every write and is never accepted
// from callers.
type BudgetEntry struct {
	BudgetID   string          `json:"id_orcamento"`
	CategoryID string          `json:"id_categoria"`
	Month      Month           `json:"mes"`
	Year       int             `json:"ano"`
	Planned    decimal.Decimal `json:"orcado"`    // orçado
	Actual     decimal.Decimal `json:"realizado"` // realizado
	Variance   decimal.Decimal `json:"dif"`       // dif = realizado − orcado, derived
	Status     BudgetStatus    `json:"status"`
	ApprovedBy *string         `json:"aprovado_por"`   // UserID, nil unless approved
	ApprovedAt *time.Time      `json:"data_aprovacao"` // nil unless approved
	AuditFields

	// Category is populated on reads that join the category registry.
	Category *Category `json:"categoria,omitempty"`
}

// ComputeVariance returns Actual − Planned.
func (e *BudgetEntry) ComputeVariance() decimal.Decimal {
	return e.Actual.Sub(e.Planned)
}

// BudgetFilter narrows budget entry listings. Zero values mean "no filter".
type BudgetFilter struct {
	Year         int
	Month        Month
	Status       BudgetStatus
	UF           string
	CostCenter   string
	CategoryID   string
	CategoryName string
}
