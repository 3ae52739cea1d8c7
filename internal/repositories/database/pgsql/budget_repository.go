package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
)

type PgxBudgetRepository struct {
	BaseRepository
}

// newPgxBudgetRepository creates a new repository for budget entries.
func newPgxBudgetRepository(db DB) *PgxBudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure implementation matches interface
var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

const budgetColumns = `o.id_orcamento, o.id_categoria, o.mes, o.ano, o.orcado, o.realizado, o.dif, o.status,
	o.aprovado_por, o.data_aprovacao, o.criado_em, o.criado_por, o.atualizado_em, o.atualizado_por`

func scanBudgetEntry(row pgx.Row) (domain.BudgetEntry, error) {
	var e domain.BudgetEntry
	err := row.Scan(
		&e.BudgetID,
		&e.CategoryID,
		&e.Month,
		&e.Year,
		&e.Planned,
		&e.Actual,
		&e.Variance,
		&e.Status,
		&e.ApprovedBy,
		&e.ApprovedAt,
		&e.CreatedAt,
		&e.CreatedBy,
		&e.LastUpdatedAt,
		&e.LastUpdatedBy,
	)
	return e, err
}

// Save inserts a new budget entry. The dif column is always written as
// realizado - orcado; callers cannot supply it.
func (r *PgxBudgetRepository) Save(ctx context.Context, entry domain.BudgetEntry) error {
	query := `
		INSERT INTO orcamentos (id_orcamento, id_categoria, mes, ano, orcado, realizado, dif, status,
			aprovado_por, data_aprovacao, criado_em, criado_por, atualizado_em, atualizado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $6 - $5, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db.Exec(ctx, query,
		entry.BudgetID,
		entry.CategoryID,
		entry.Month,
		entry.Year,
		entry.Planned,
		entry.Actual,
		entry.Status,
		entry.ApprovedBy,
		entry.ApprovedAt,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: orçamento para categoria %s em %s/%d já existe",
				apperrors.ErrDuplicate, entry.CategoryID, entry.Month, entry.Year)
		}
		return fmt.Errorf("failed to save budget entry %s: %w", entry.BudgetID, err)
	}
	return nil
}

// Update rewrites an existing entry by surrogate id, recomputing dif.
func (r *PgxBudgetRepository) Update(ctx context.Context, entry domain.BudgetEntry) error {
	query := `
		UPDATE orcamentos
		SET orcado = $2, realizado = $3, dif = $3 - $2, status = $4,
			aprovado_por = $5, data_aprovacao = $6, atualizado_em = $7, atualizado_por = $8
		WHERE id_orcamento = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		entry.BudgetID,
		entry.Planned,
		entry.Actual,
		entry.Status,
		entry.ApprovedBy,
		entry.ApprovedAt,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update budget entry %s: %w", entry.BudgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("budget entry %s not found", entry.BudgetID))
	}
	return nil
}

func (r *PgxBudgetRepository) FindByID(ctx context.Context, budgetID string) (*domain.BudgetEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM orcamentos o WHERE o.id_orcamento = $1;`, budgetColumns)
	entry, err := scanBudgetEntry(r.db.QueryRow(ctx, query, budgetID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("budget entry %s not found", budgetID))
		}
		return nil, fmt.Errorf("failed to find budget entry %s: %w", budgetID, err)
	}
	return &entry, nil
}

func (r *PgxBudgetRepository) FindByNaturalKey(ctx context.Context, categoryID string, month domain.Month, year int) (*domain.BudgetEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM orcamentos o WHERE o.id_categoria = $1 AND o.mes = $2 AND o.ano = $3;`, budgetColumns)
	entry, err := scanBudgetEntry(r.db.QueryRow(ctx, query, categoryID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find budget entry by natural key: %w", err)
	}
	return &entry, nil
}

// List retrieves entries joined with their category so category-side filters
// apply and responses can embed the category.
func (r *PgxBudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]domain.BudgetEntry, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`
		SELECT %s,
			c.id_categoria, c.categoria, c.uf, c.master, c.grupo, c.cod_class, c.classe_custo,
			c.criado_em, c.criado_por, c.atualizado_em, c.atualizado_por
		FROM orcamentos o
		JOIN categorias c ON c.id_categoria = o.id_categoria
		WHERE 1=1`, budgetColumns))

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Year != 0 {
		sb.WriteString(" AND o.ano = " + arg(filter.Year))
	}
	if filter.Month != "" {
		sb.WriteString(" AND o.mes = " + arg(filter.Month))
	}
	if filter.Status != "" {
		sb.WriteString(" AND o.status = " + arg(filter.Status))
	}
	if filter.UF != "" {
		sb.WriteString(" AND c.uf = " + arg(filter.UF))
	}
	if filter.CostCenter != "" {
		sb.WriteString(" AND c.master = " + arg(filter.CostCenter))
	}
	if filter.CategoryID != "" {
		sb.WriteString(" AND o.id_categoria = " + arg(filter.CategoryID))
	}
	if filter.CategoryName != "" {
		sb.WriteString(" AND c.categoria = " + arg(filter.CategoryName))
	}
	sb.WriteString(`
		ORDER BY o.ano DESC, c.categoria,
			array_position(ARRAY['Janeiro','Fevereiro','Março','Abril','Maio','Junho','Julho','Agosto','Setembro','Outubro','Novembro','Dezembro'], o.mes);`)

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget entries: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BudgetEntry, error) {
		var e domain.BudgetEntry
		var c domain.Category
		err := row.Scan(
			&e.BudgetID, &e.CategoryID, &e.Month, &e.Year, &e.Planned, &e.Actual, &e.Variance, &e.Status,
			&e.ApprovedBy, &e.ApprovedAt, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
			&c.CategoryID, &c.Name, &c.UF, &c.CostCenter, &c.Group, &c.ClassCode, &c.CostClass,
			&c.CreatedAt, &c.CreatedBy, &c.LastUpdatedAt, &c.LastUpdatedBy,
		)
		e.Category = &c
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget entries: %w", err)
	}
	return entries, nil
}

func (r *PgxBudgetRepository) ListByCategoryYear(ctx context.Context, categoryID string, year int) ([]domain.BudgetEntry, error) {
	query := fmt.Sprintf(`SELECT %s FROM orcamentos o WHERE o.id_categoria = $1 AND o.ano = $2;`, budgetColumns)
	rows, err := r.db.Query(ctx, query, categoryID, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget entries for category %s: %w", categoryID, err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.BudgetEntry, error) {
		return scanBudgetEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan budget entries: %w", err)
	}
	return entries, nil
}

func (r *PgxBudgetRepository) Delete(ctx context.Context, budgetID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orcamentos WHERE id_orcamento = $1;`, budgetID)
	if err != nil {
		return fmt.Errorf("failed to delete budget entry %s: %w", budgetID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("budget entry %s not found", budgetID))
	}
	return nil
}

// ListFilterValues collects the distinct value sets for the filter dropdowns
// in one round trip per facet.
func (r *PgxBudgetRepository) ListFilterValues(ctx context.Context) (*domain.FilterValues, error) {
	values := &domain.FilterValues{
		Years:      []int{},
		Statuses:   []domain.BudgetStatus{},
		UFs:        []string{},
		CostCenter: []string{},
		Categories: []string{},
	}

	rows, err := r.db.Query(ctx, `SELECT DISTINCT ano FROM orcamentos ORDER BY ano DESC;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query filter years: %w", err)
	}
	values.Years, err = pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, fmt.Errorf("failed to scan filter years: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT DISTINCT status FROM orcamentos ORDER BY status;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query filter statuses: %w", err)
	}
	values.Statuses, err = pgx.CollectRows(rows, pgx.RowTo[domain.BudgetStatus])
	if err != nil {
		return nil, fmt.Errorf("failed to scan filter statuses: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT DISTINCT c.uf FROM categorias c
		JOIN orcamentos o ON o.id_categoria = c.id_categoria
		WHERE c.uf <> '' ORDER BY c.uf;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query filter ufs: %w", err)
	}
	values.UFs, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan filter ufs: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT DISTINCT c.master FROM categorias c
		JOIN orcamentos o ON o.id_categoria = c.id_categoria
		WHERE c.master <> '' ORDER BY c.master;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query filter masters: %w", err)
	}
	values.CostCenter, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan filter masters: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT DISTINCT c.categoria FROM categorias c
		JOIN orcamentos o ON o.id_categoria = c.id_categoria
		ORDER BY c.categoria;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query filter categories: %w", err)
	}
	values.Categories, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan filter categories: %w", err)
	}

	return values, nil
}
