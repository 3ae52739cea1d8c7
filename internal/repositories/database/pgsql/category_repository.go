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

type PgxCategoryRepository struct {
	BaseRepository
}

// newPgxCategoryRepository creates a new repository for categories.
func newPgxCategoryRepository(db DB) *PgxCategoryRepository {
	return &PgxCategoryRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure implementation matches interface
var _ portsrepo.CategoryRepository = (*PgxCategoryRepository)(nil)

const categoryColumns = `id_categoria, categoria, uf, master, grupo, cod_class, classe_custo,
	criado_em, criado_por, atualizado_em, atualizado_por`

func scanCategory(row pgx.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(
		&c.CategoryID,
		&c.Name,
		&c.UF,
		&c.CostCenter,
		&c.Group,
		&c.ClassCode,
		&c.CostClass,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

func (r *PgxCategoryRepository) Save(ctx context.Context, cat domain.Category) error {
	query := `
		INSERT INTO categorias (id_categoria, categoria, uf, master, grupo, cod_class, classe_custo,
			criado_em, criado_por, atualizado_em, atualizado_por)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.db.Exec(ctx, query,
		cat.CategoryID,
		cat.Name,
		cat.UF,
		cat.CostCenter,
		cat.Group,
		cat.ClassCode,
		cat.CostClass,
		cat.CreatedAt,
		cat.CreatedBy,
		cat.LastUpdatedAt,
		cat.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: categoria %q já existe", apperrors.ErrDuplicate, cat.Name)
		}
		return fmt.Errorf("failed to save category %s: %w", cat.CategoryID, err)
	}
	return nil
}

func (r *PgxCategoryRepository) Update(ctx context.Context, cat domain.Category) error {
	query := `
		UPDATE categorias
		SET categoria = $2, uf = $3, master = $4, grupo = $5, cod_class = $6, classe_custo = $7,
			atualizado_em = $8, atualizado_por = $9
		WHERE id_categoria = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		cat.CategoryID,
		cat.Name,
		cat.UF,
		cat.CostCenter,
		cat.Group,
		cat.ClassCode,
		cat.CostClass,
		cat.LastUpdatedAt,
		cat.LastUpdatedBy,
	)
	if err != nil {
		if _, ok := isUniqueViolation(err); ok {
			return fmt.Errorf("%w: categoria %q já existe", apperrors.ErrDuplicate, cat.Name)
		}
		return fmt.Errorf("failed to update category %s: %w", cat.CategoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("category %s not found", cat.CategoryID))
	}
	return nil
}

func (r *PgxCategoryRepository) FindByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categorias WHERE id_categoria = $1;`, categoryColumns)
	cat, err := scanCategory(r.db.QueryRow(ctx, query, categoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("category %s not found", categoryID))
		}
		return nil, fmt.Errorf("failed to find category %s: %w", categoryID, err)
	}
	return &cat, nil
}

func (r *PgxCategoryRepository) FindByUniqueTuple(ctx context.Context, name, group, classCode string) (*domain.Category, error) {
	query := fmt.Sprintf(`SELECT %s FROM categorias WHERE categoria = $1 AND grupo = $2 AND cod_class = $3;`, categoryColumns)
	cat, err := scanCategory(r.db.QueryRow(ctx, query, name, group, classCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find category by unique tuple: %w", err)
	}
	return &cat, nil
}

func (r *PgxCategoryRepository) List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`SELECT %s FROM categorias WHERE 1=1`, categoryColumns))

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Name != "" {
		sb.WriteString(" AND categoria = " + arg(filter.Name))
	}
	if filter.UF != "" {
		sb.WriteString(" AND uf = " + arg(filter.UF))
	}
	if filter.Group != "" {
		sb.WriteString(" AND grupo = " + arg(filter.Group))
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		sb.WriteString(fmt.Sprintf(" AND (categoria ILIKE %s OR grupo ILIKE %s OR classe_custo ILIKE %s)", p, p, p))
	}
	sb.WriteString(" ORDER BY categoria;")

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	cats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Category, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan categories: %w", err)
	}
	return cats, nil
}

func (r *PgxCategoryRepository) Delete(ctx context.Context, categoryID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categorias WHERE id_categoria = $1;`, categoryID)
	if err != nil {
		return fmt.Errorf("failed to delete category %s: %w", categoryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("category %s not found", categoryID))
	}
	return nil
}

func (r *PgxCategoryRepository) CountBudgetEntries(ctx context.Context, categoryID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orcamentos WHERE id_categoria = $1;`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count budget entries for category %s: %w", categoryID, err)
	}
	return count, nil
}

func (r *PgxCategoryRepository) ListFilterValues(ctx context.Context) (*domain.CategoryFilterValues, error) {
	values := &domain.CategoryFilterValues{
		Categories: []string{},
		UFs:        []string{},
		Groups:     []string{},
	}

	rows, err := r.db.Query(ctx, `SELECT DISTINCT categoria FROM categorias ORDER BY categoria;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category names: %w", err)
	}
	values.Categories, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan category names: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT DISTINCT uf FROM categorias WHERE uf <> '' ORDER BY uf;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category ufs: %w", err)
	}
	values.UFs, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan category ufs: %w", err)
	}

	rows, err = r.db.Query(ctx, `SELECT DISTINCT grupo FROM categorias WHERE grupo <> '' ORDER BY grupo;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query category groups: %w", err)
	}
	values.Groups, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan category groups: %w", err)
	}

	return values, nil
}
