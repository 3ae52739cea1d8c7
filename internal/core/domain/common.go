package domain

import "time"

// AuditFields are embedded in every persisted entity.
type AuditFields struct {
	CreatedAt     time.Time `json:"criado_em"`
	CreatedBy     string    `json:"criado_por"` // UserID reference
	LastUpdatedAt time.Time `json:"atualizado_em"`
	LastUpdatedBy string    `json:"atualizado_por"` // UserID reference
}
