package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// MonthValue accepts a month either as its canonical Portuguese name or as a
// 1-12 ordinal, the two shapes the SPA sends.
type MonthValue struct {
	name      string
	ordinal   int
	isOrdinal bool
}

func (m *MonthValue) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		m.ordinal = n
		m.isOrdinal = true
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	m.name = s
	return nil
}

func (m MonthValue) MarshalJSON() ([]byte, error) {
	if m.isOrdinal {
		return json.Marshal(m.ordinal)
	}
	return json.Marshal(m.name)
}

// Normalize resolves the value to a canonical month name.
func (m MonthValue) Normalize() (domain.Month, error) {
	return domain.NormalizeMonth(m.name, m.ordinal, m.isOrdinal)
}

// IsZero reports whether the value was absent from the payload.
func (m MonthValue) IsZero() bool {
	return !m.isOrdinal && m.name == ""
}

// MonthValueOf builds a MonthValue from a canonical month, for tests and
// internal callers.
func MonthValueOf(month domain.Month) MonthValue {
	return MonthValue{name: string(month)}
}

// UpsertBudgetRequest creates or updates one budget entry by natural key.
// Absent optional fields leave the stored values untouched.
type UpsertBudgetRequest struct {
	CategoryID string           `json:"id_categoria" binding:"required"`
	Month      MonthValue       `json:"mes" binding:"required"`
	Year       int              `json:"ano" binding:"required"`
	Planned    *decimal.Decimal `json:"orcado"`
	Actual     *decimal.Decimal `json:"realizado"`
	Status     *string          `json:"status"`
}

// BatchBudgetItem is one target of a bulk upsert. Validated per item; a
// malformed item is reported and skipped, never fatal to the batch.
type BatchBudgetItem struct {
	CategoryID string           `json:"id_categoria"`
	Month      MonthValue       `json:"mes"`
	Year       int              `json:"ano"`
	Planned    *decimal.Decimal `json:"orcado"`
	Actual     *decimal.Decimal `json:"realizado"`
	Status     *string          `json:"status"`
}

// BatchUpsertRequest carries the bulk upsert targets.
type BatchUpsertRequest struct {
	Items []BatchBudgetItem `json:"orcamentos" binding:"required"`
}

// BatchIDsRequest carries the targets of batch submit/approve.
type BatchIDsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BatchRejectRequest carries the targets and shared reason of a batch reject.
type BatchRejectRequest struct {
	IDs    []string `json:"ids" binding:"required"`
	Reason string   `json:"motivo"`
}

// RejectRequest carries the reason of a single-item rejection.
type RejectRequest struct {
	Reason string `json:"motivo"`
}

// BatchEntryID references one processed entry in a bulk upsert response.
type BatchEntryID struct {
	ID string `json:"id"`
}

// BatchUpsertResult reports a bulk upsert: per-item errors never abort the
// batch, so created/updated count only the items that went through.
type BatchUpsertResult struct {
	Message string         `json:"message"`
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Errors  []string       `json:"errors"`
	Entries []BatchEntryID `json:"orcamentos"`
}

// HasErrors reports whether the batch was only partially successful.
func (r BatchUpsertResult) HasErrors() bool { return len(r.Errors) > 0 }

// BatchActionResult reports a batch submit/approve.
type BatchActionResult struct {
	Message      string   `json:"message"`
	UpdatedCount int      `json:"updated_count"`
	Errors       []string `json:"errors"`
}

// HasErrors reports whether the batch was only partially successful.
func (r BatchActionResult) HasErrors() bool { return len(r.Errors) > 0 }

// BatchRejectResult additionally carries the affected-entry detail recorded in
// the audit payload, so callers can render context without re-joining.
type BatchRejectResult struct {
	BatchActionResult
	Detail []domain.EntryRef `json:"detalhes"`
}

// BudgetResponse is the wire shape of one budget entry.
type BudgetResponse struct {
	BudgetID   string            `json:"id_orcamento"`
	CategoryID string            `json:"id_categoria"`
	Month      domain.Month      `json:"mes"`
	Year       int               `json:"ano"`
	Planned    decimal.Decimal   `json:"orcado"`
	Actual     decimal.Decimal   `json:"realizado"`
	Variance   decimal.Decimal   `json:"dif"`
	Status     string            `json:"status"`
	ApprovedBy *string           `json:"aprovado_por"`
	ApprovedAt *time.Time        `json:"data_aprovacao"`
	CreatedAt  time.Time         `json:"criado_em"`
	UpdatedAt  time.Time         `json:"atualizado_em"`
	Category   *CategoryResponse `json:"categoria,omitempty"`
}

// ToBudgetResponse maps a domain entry to its wire shape.
func ToBudgetResponse(e *domain.BudgetEntry) BudgetResponse {
	resp := BudgetResponse{
		BudgetID:   e.BudgetID,
		CategoryID: e.CategoryID,
		Month:      e.Month,
		Year:       e.Year,
		Planned:    e.Planned,
		Actual:     e.Actual,
		Variance:   e.Variance,
		Status:     string(e.Status),
		ApprovedBy: e.ApprovedBy,
		ApprovedAt: e.ApprovedAt,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.LastUpdatedAt,
	}
	if e.Category != nil {
		cat := ToCategoryResponse(e.Category)
		resp.Category = &cat
	}
	return resp
}

// ToBudgetResponses maps a slice of domain entries.
func ToBudgetResponses(entries []domain.BudgetEntry) []BudgetResponse {
	out := make([]BudgetResponse, len(entries))
	for i := range entries {
		out[i] = ToBudgetResponse(&entries[i])
	}
	return out
}

// MonthGridResponse is the twelve-month view of one category/year. Months
// without a stored entry appear as virtual zero rows in draft status.
type MonthGridResponse struct {
	Category CategoryResponse `json:"categoria"`
	Entries  []BudgetResponse `json:"orcamentos"`
}
