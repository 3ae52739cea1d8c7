package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
)

// reportingRepository implements the read-only dashboard aggregations.
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository.
func newReportingRepository(db DB) portsrepo.ReportingRepository {
	return &reportingRepository{BaseRepository: BaseRepository{db: db}}
}

// Ensure implementation matches interface
var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// reportWhere renders the shared dashboard filter as a WHERE fragment over
// the orcamentos/categorias join.
func reportWhere(filter domain.ReportFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(" WHERE 1=1")

	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Year != 0 {
		sb.WriteString(" AND o.ano = " + arg(filter.Year))
	}
	if filter.CategoryName != "" {
		sb.WriteString(" AND c.categoria = " + arg(filter.CategoryName))
	}
	if filter.UF != "" {
		sb.WriteString(" AND c.uf = " + arg(filter.UF))
	}
	if filter.Group != "" {
		sb.WriteString(" AND c.grupo = " + arg(filter.Group))
	}
	return sb.String(), args
}

func (r *reportingRepository) Totals(ctx context.Context, filter domain.ReportFilter) (*domain.Totals, error) {
	where, args := reportWhere(filter)
	query := `
		SELECT
			COALESCE(SUM(o.orcado), 0)::float8,
			COALESCE(SUM(o.realizado), 0)::float8,
			COALESCE(SUM(o.dif), 0)::float8
		FROM orcamentos o
		JOIN categorias c ON c.id_categoria = o.id_categoria` + where + `;`

	var totals domain.Totals
	err := r.db.QueryRow(ctx, query, args...).Scan(&totals.Planned, &totals.Actual, &totals.Variance)
	if err != nil {
		return nil, fmt.Errorf("error querying totals: %w", err)
	}
	if totals.Planned != 0 {
		totals.ExecutionPct = totals.Actual / totals.Planned * 100
	}
	return &totals, nil
}

func (r *reportingRepository) MonthlySeries(ctx context.Context, filter domain.ReportFilter) ([]domain.MonthTotals, error) {
	where, args := reportWhere(filter)
	query := `
		SELECT
			o.mes,
			COALESCE(SUM(o.orcado), 0),
			COALESCE(SUM(o.realizado), 0),
			COALESCE(SUM(o.dif), 0)
		FROM orcamentos o
		JOIN categorias c ON c.id_categoria = o.id_categoria` + where + `
		GROUP BY o.mes;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying monthly series: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[domain.Month]domain.MonthTotals, 12)
	for rows.Next() {
		var m domain.MonthTotals
		if err := rows.Scan(&m.Month, &m.Planned, &m.Actual, &m.Variance); err != nil {
			return nil, fmt.Errorf("error scanning monthly series row: %w", err)
		}
		byMonth[m.Month] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating monthly series rows: %w", err)
	}

	// Always return all twelve months in calendar order; empty months stay
	// at zero so the chart axis is stable.
	series := make([]domain.MonthTotals, 0, len(domain.Months))
	for _, month := range domain.Months {
		if m, ok := byMonth[month]; ok {
			series = append(series, m)
			continue
		}
		series = append(series, domain.MonthTotals{Month: month})
	}
	return series, nil
}

func (r *reportingRepository) GroupVariances(ctx context.Context, filter domain.ReportFilter, limit int) ([]domain.GroupTotals, error) {
	where, args := reportWhere(filter)
	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT c.grupo, COALESCE(SUM(o.dif), 0)
		FROM orcamentos o
		JOIN categorias c ON c.id_categoria = o.id_categoria%s
		GROUP BY c.grupo
		ORDER BY ABS(SUM(o.dif)) DESC
		LIMIT $%d;`, where, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying group variances: %w", err)
	}
	defer rows.Close()

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.GroupTotals, error) {
		var g domain.GroupTotals
		err := row.Scan(&g.Group, &g.Variance)
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning group variances: %w", err)
	}
	return groups, nil
}

func (r *reportingRepository) CostCenterRollup(ctx context.Context, filter domain.ReportFilter) ([]domain.CostCenterTotals, error) {
	where, args := reportWhere(filter)
	query := `
		SELECT
			c.categoria,
			COALESCE(SUM(o.orcado), 0),
			COALESCE(SUM(o.realizado), 0),
			COALESCE(SUM(o.dif), 0)
		FROM orcamentos o
		JOIN categorias c ON c.id_categoria = o.id_categoria` + where + `
		GROUP BY c.categoria
		ORDER BY c.categoria;`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying cost center rollup: %w", err)
	}
	defer rows.Close()

	rollup, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CostCenterTotals, error) {
		var cc domain.CostCenterTotals
		err := row.Scan(&cc.Category, &cc.Planned, &cc.Actual, &cc.Variance)
		return cc, err
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning cost center rollup: %w", err)
	}
	return rollup, nil
}

func (r *reportingRepository) KPIs(ctx context.Context, year int) (*domain.KPIs, error) {
	var (
		where string
		args  []any
	)
	if year != 0 {
		where = " WHERE ano = $1"
		args = append(args, year)
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM categorias),
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'aguardando_aprovacao'),
			COUNT(*) FILTER (WHERE status = 'aprovado')
		FROM orcamentos` + where + `;`

	var kpis domain.KPIs
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&kpis.TotalCategories,
		&kpis.TotalEntries,
		&kpis.PendingApproval,
		&kpis.Approved,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying kpis: %w", err)
	}
	return &kpis, nil
}
