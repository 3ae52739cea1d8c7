package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
)

// AuditKind discriminates audit payload shapes. Stored alongside the entry so
// read-side reconstructions can query by kind instead of matching on the human
// action label.
type AuditKind string

const (
	KindEntryCreate    AuditKind = "entry_create"
	KindEntryUpdate    AuditKind = "entry_update"
	KindEntryApprove   AuditKind = "entry_approve"
	KindEntryReject    AuditKind = "entry_reject"
	KindEntryDelete    AuditKind = "entry_delete"
	KindBatchUpsert    AuditKind = "batch_upsert"
	KindBatchSubmit    AuditKind = "batch_submit"
	KindBatchApprove   AuditKind = "batch_approve"
	KindBatchReject    AuditKind = "batch_reject"
	KindCategoryCreate AuditKind = "category_create"
	KindCategoryUpdate AuditKind = "category_update"
	KindCategoryDelete AuditKind = "category_delete"
	KindCategoryImport AuditKind = "category_import"
)

// AuditEntry is one append-only record of who did what to which entity.
// Never mutated or deleted by the core.
type AuditEntry struct {
	AuditID       string       `json:"id_log"`
	ActorID       string       `json:"id_usuario"`
	ActorName     string       `json:"usuario_nome"` // denormalized for log views
	Action        string       `json:"acao"`         // human-readable label
	Kind          AuditKind    `json:"kind"`
	AffectedTable string       `json:"tabela_afetada"`
	AffectedID    *string      `json:"id_registro"` // nil for batch operations
	Timestamp     time.Time    `json:"timestamp"`
	Details       AuditDetails `json:"detalhes"`
}

// AuditDetails is the tagged union of audit payload shapes. Implementations
// are plain structs serialized as JSON at rest.
type AuditDetails interface {
	AuditKind() AuditKind
}

// EntryRef carries the display fields of one budget entry inside batch audit
// payloads, so downstream views can reconstruct context without re-joining.
type EntryRef struct {
	BudgetID     string `json:"id_orcamento"`
	CategoryID   string `json:"id_categoria"`
	CategoryName string `json:"categoria_nome"`
	CostCenter   string `json:"master"`
	UF           string `json:"uf"`
	Group        string `json:"grupo"`
	Month        Month  `json:"mes"`
	Year         int    `json:"ano"`
}

// NewEntryRef builds an EntryRef from an entry and its category.
func NewEntryRef(entry BudgetEntry, cat Category) EntryRef {
	return EntryRef{
		BudgetID:     entry.BudgetID,
		CategoryID:   entry.CategoryID,
		CategoryName: cat.Name,
		CostCenter:   cat.CostCenter,
		UF:           cat.UF,
		Group:        cat.Group,
		Month:        entry.Month,
		Year:         entry.Year,
	}
}

// EntryWriteDetails records a single create or update of a budget entry.
type EntryWriteDetails struct {
	CategoryGroup string `json:"categoria"`
	Month         Month  `json:"mes"`
	Year          int    `json:"ano"`
	Planned       string `json:"orcado"`
	Actual        string `json:"realizado"`
	// Before/After snapshots are present on policy-gated edits of approved
	// entries so reviewers can see exactly what changed.
	Before *BudgetEntry `json:"antes,omitempty"`
	After  *BudgetEntry `json:"depois,omitempty"`
	Kind   AuditKind    `json:"-"`
}

func (d EntryWriteDetails) AuditKind() AuditKind {
	if d.Kind == KindEntryUpdate {
		return KindEntryUpdate
	}
	return KindEntryCreate
}

// ApproveDetails records a single approval with the post-approval snapshot.
type ApproveDetails struct {
	Entry BudgetEntry `json:"orcamento"`
}

func (ApproveDetails) AuditKind() AuditKind { return KindEntryApprove }

// RejectDetails records a single rejection with its reason.
type RejectDetails struct {
	Entry  BudgetEntry `json:"orcamento"`
	Reason string      `json:"motivo"`
}

func (RejectDetails) AuditKind() AuditKind { return KindEntryReject }

// DeleteDetails captures the full deleted snapshot before removal.
type DeleteDetails struct {
	Deleted BudgetEntry `json:"orcamento_deletado"`
}

func (DeleteDetails) AuditKind() AuditKind { return KindEntryDelete }

// BatchUpsertDetails summarizes a bulk create/update sweep.
type BatchUpsertDetails struct {
	Created int      `json:"criados"`
	Updated int      `json:"atualizados"`
	Errors  []string `json:"erros"`
}

func (BatchUpsertDetails) AuditKind() AuditKind { return KindBatchUpsert }

// BatchSubmitDetails lists the entries sent for approval, shaped for the
// gestor's submissions view.
type BatchSubmitDetails struct {
	Submitted []EntryRef `json:"orcamentos_submetidos"`
	Total     int        `json:"total_submetidos"`
	Errors    int        `json:"erros"`
	Timestamp time.Time  `json:"timestamp"`
}

func (BatchSubmitDetails) AuditKind() AuditKind { return KindBatchSubmit }

// BatchApproveDetails summarizes a bulk approval.
type BatchApproveDetails struct {
	IDs     []string `json:"ids"`
	Updated int      `json:"atualizados"`
	Errors  int      `json:"erros"`
}

func (BatchApproveDetails) AuditKind() AuditKind { return KindBatchApprove }

// BatchRejectDetails lists the rejected entries with the shared reason, shaped
// for the admin's rejections view.
type BatchRejectDetails struct {
	Rejected   []EntryRef `json:"orcamentos_reprovados"`
	Total      int        `json:"total_reprovados"`
	Reason     string     `json:"motivo"`
	GestorName string     `json:"gestor_usuario"`
	Errors     int        `json:"erros"`
	Timestamp  time.Time  `json:"timestamp"`
}

func (BatchRejectDetails) AuditKind() AuditKind { return KindBatchReject }

// CategoryWriteDetails records category creation or update.
type CategoryWriteDetails struct {
	Before *Category `json:"antes,omitempty"`
	After  Category  `json:"depois"`
	Kind   AuditKind `json:"-"`
}

func (d CategoryWriteDetails) AuditKind() AuditKind {
	if d.Kind == KindCategoryUpdate {
		return KindCategoryUpdate
	}
	return KindCategoryCreate
}

// CategoryDeleteDetails captures the deleted category snapshot.
type CategoryDeleteDetails struct {
	Deleted Category `json:"categoria_deletada"`
}

func (CategoryDeleteDetails) AuditKind() AuditKind { return KindCategoryDelete }

// CategoryImportDetails summarizes an Excel import.
type CategoryImportDetails struct {
	Imported int    `json:"importadas"`
	Errors   int    `json:"erros"`
	Filename string `json:"arquivo"`
}

func (CategoryImportDetails) AuditKind() AuditKind { return KindCategoryImport }

// DecodeAuditDetails deserializes a persisted payload back into its typed
// variant based on the stored kind.
func DecodeAuditDetails(kind AuditKind, raw []byte) (AuditDetails, error) {
	var (
		details AuditDetails
		err     error
	)
	switch kind {
	case KindEntryCreate, KindEntryUpdate:
		var d EntryWriteDetails
		err = json.Unmarshal(raw, &d)
		d.Kind = kind
		details = d
	case KindEntryApprove:
		var d ApproveDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindEntryReject:
		var d RejectDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindEntryDelete:
		var d DeleteDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindBatchUpsert:
		var d BatchUpsertDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindBatchSubmit:
		var d BatchSubmitDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindBatchApprove:
		var d BatchApproveDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindBatchReject:
		var d BatchRejectDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindCategoryCreate, KindCategoryUpdate:
		var d CategoryWriteDetails
		err = json.Unmarshal(raw, &d)
		d.Kind = kind
		details = d
	case KindCategoryDelete:
		var d CategoryDeleteDetails
		err = json.Unmarshal(raw, &d)
		details = d
	case KindCategoryImport:
		var d CategoryImportDetails
		err = json.Unmarshal(raw, &d)
		details = d
	default:
		return nil, fmt.Errorf("%w: unknown audit kind %q", apperrors.ErrValidation, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding audit details of kind %q: %w", kind, err)
	}
	return details, nil
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	ActorID       string
	AffectedTable string
	Kind          AuditKind
	ActionSearch  string // substring match over the human label
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
