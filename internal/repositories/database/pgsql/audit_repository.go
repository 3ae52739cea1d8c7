package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for the audit trail.
func newPgxAuditRepository(db DB) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure implementation matches interface
var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// Append inserts one audit record. The typed details payload is serialized to
// jsonb; its kind column lets reads pick the right decoder.
func (r *PgxAuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("failed to serialize audit details: %w", err)
	}

	query := `
		INSERT INTO logs (id_log, id_usuario, usuario_nome, acao, kind, tabela_afetada, id_registro, timestamp, detalhes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = r.db.Exec(ctx, query,
		entry.AuditID,
		entry.ActorID,
		entry.ActorName,
		entry.Action,
		entry.Kind,
		entry.AffectedTable,
		entry.AffectedID,
		entry.Timestamp,
		details,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry %s: %w", entry.AuditID, err)
	}
	return nil
}

func scanAuditEntry(row pgx.Row) (domain.AuditEntry, error) {
	var (
		e   domain.AuditEntry
		raw []byte
	)
	err := row.Scan(
		&e.AuditID,
		&e.ActorID,
		&e.ActorName,
		&e.Action,
		&e.Kind,
		&e.AffectedTable,
		&e.AffectedID,
		&e.Timestamp,
		&raw,
	)
	if err != nil {
		return e, err
	}
	e.Details, err = domain.DecodeAuditDetails(e.Kind, raw)
	return e, err
}

const auditColumns = `id_log, id_usuario, usuario_nome, acao, kind, tabela_afetada, id_registro, timestamp, detalhes`

// List returns matching entries newest first, plus the total match count.
func (r *PgxAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error) {
	var where strings.Builder
	where.WriteString(" WHERE 1=1")

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.ActorID != "" {
		where.WriteString(" AND id_usuario = " + arg(filter.ActorID))
	}
	if filter.AffectedTable != "" {
		where.WriteString(" AND tabela_afetada = " + arg(filter.AffectedTable))
	}
	if filter.Kind != "" {
		where.WriteString(" AND kind = " + arg(filter.Kind))
	}
	if filter.ActionSearch != "" {
		where.WriteString(" AND acao ILIKE " + arg("%"+filter.ActionSearch+"%"))
	}
	if filter.From != nil {
		where.WriteString(" AND timestamp >= " + arg(*filter.From))
	}
	if filter.To != nil {
		where.WriteString(" AND timestamp <= " + arg(*filter.To))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM logs" + where.String() + ";"
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM logs%s ORDER BY timestamp DESC", auditColumns, where.String())
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
		query += " OFFSET " + arg(filter.Offset)
	}
	query += ";"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		return scanAuditEntry(row)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan audit entries: %w", err)
	}
	return entries, total, nil
}

func (r *PgxAuditRepository) FindByID(ctx context.Context, auditID string) (*domain.AuditEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM logs WHERE id_log = $1;`, auditColumns)
	entry, err := scanAuditEntry(r.db.QueryRow(ctx, query, auditID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("audit entry %s not found", auditID))
		}
		return nil, fmt.Errorf("failed to find audit entry %s: %w", auditID, err)
	}
	return &entry, nil
}

// ListByKind returns all entries of one kind for one table, newest first.
// The workflow reconstructions (submissions, rejections) read through here.
func (r *PgxAuditRepository) ListByKind(ctx context.Context, kind domain.AuditKind, affectedTable string) ([]domain.AuditEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM logs WHERE kind = $1 AND tabela_afetada = $2 ORDER BY timestamp DESC;`, auditColumns)
	rows, err := r.db.Query(ctx, query, kind, affectedTable)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries of kind %s: %w", kind, err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AuditEntry, error) {
		return scanAuditEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan audit entries: %w", err)
	}
	return entries, nil
}

func (r *PgxAuditRepository) Summary(ctx context.Context) (*domain.AuditSummary, error) {
	summary := &domain.AuditSummary{
		ByTable: map[string]int{},
		ByActor: map[string]int{},
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM logs;`).Scan(&summary.Total); err != nil {
		return nil, fmt.Errorf("failed to count audit entries: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT tabela_afetada, COUNT(*) FROM logs GROUP BY tabela_afetada;`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate audit entries by table: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			table string
			count int
		)
		if err := rows.Scan(&table, &count); err != nil {
			return nil, fmt.Errorf("failed to scan audit table aggregate: %w", err)
		}
		summary.ByTable[table] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit table aggregates: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT usuario_nome, COUNT(*) FROM logs GROUP BY usuario_nome;`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate audit entries by actor: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			actor string
			count int
		)
		if err := rows.Scan(&actor, &count); err != nil {
			return nil, fmt.Errorf("failed to scan audit actor aggregate: %w", err)
		}
		summary.ByActor[actor] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit actor aggregates: %w", err)
	}

	return summary, nil
}
