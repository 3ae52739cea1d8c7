package dto

import (
	"time"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
)

// AuditLogResponse is the wire shape of one audit entry.
type AuditLogResponse struct {
	AuditID       string              `json:"id_log"`
	ActorID       string              `json:"id_usuario"`
	ActorName     string              `json:"usuario_nome"`
	Action        string              `json:"acao"`
	Kind          domain.AuditKind    `json:"kind"`
	AffectedTable string              `json:"tabela_afetada"`
	AffectedID    *string             `json:"id_registro"`
	Timestamp     time.Time           `json:"timestamp"`
	Details       domain.AuditDetails `json:"detalhes"`
}

// ToAuditLogResponse maps a domain audit entry to its wire shape.
func ToAuditLogResponse(e *domain.AuditEntry) AuditLogResponse {
	return AuditLogResponse{
		AuditID:       e.AuditID,
		ActorID:       e.ActorID,
		ActorName:     e.ActorName,
		Action:        e.Action,
		Kind:          e.Kind,
		AffectedTable: e.AffectedTable,
		AffectedID:    e.AffectedID,
		Timestamp:     e.Timestamp,
		Details:       e.Details,
	}
}

// AuditLogListResponse is a paginated log listing.
type AuditLogListResponse struct {
	Logs    []AuditLogResponse `json:"logs"`
	Total   int                `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}

// SubmissionGroup is one batch of entries sent for approval, reconstructed
// from the audit trail for the gestor's review screen. A nil LogID marks the
// virtual group of pending entries that reached the state outside a recorded
// batch (e.g. imported data).
type SubmissionGroup struct {
	LogID       *string           `json:"id_log"`
	Date        *time.Time        `json:"data"`
	AdminName   string            `json:"admin_usuario"`
	Total       int               `json:"total_submetidos"`
	Entries     []domain.EntryRef `json:"orcamentos"`
	CostCenters []string          `json:"masters"`
	UFs         []string          `json:"ufs"`
	Categories  []string          `json:"categorias"`
}

// RejectionGroup is one batch or grouped set of rejections, reconstructed from
// the audit trail for the admin's review screen.
type RejectionGroup struct {
	LogID       *string           `json:"id_log"`
	Date        *time.Time        `json:"data"`
	GestorName  string            `json:"gestor_usuario"`
	Total       int               `json:"total_reprovados"`
	Reason      string            `json:"motivo"`
	Type        string            `json:"tipo"` // "lote" or "individual"
	Entries     []domain.EntryRef `json:"orcamentos"`
	CostCenters []string          `json:"masters"`
	UFs         []string          `json:"ufs"`
	Categories  []string          `json:"categorias"`
}
