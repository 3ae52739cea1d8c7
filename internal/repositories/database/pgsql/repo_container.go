package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pool-backed repositories and the unit of
// work factory.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		Budget:    newPgxBudgetRepository(dbPool),
		Category:  newPgxCategoryRepository(dbPool),
		Audit:     newPgxAuditRepository(dbPool),
		User:      newPgxUserRepository(dbPool),
		Reporting: newReportingRepository(dbPool),
		UoW:       &pgxUnitOfWork{db: dbPool},
	}
}

// pgxUnitOfWork runs functions within one database transaction. Calling Begin
// on pgx.Tx opens a savepoint, so nesting RunAtomic gives per-scope rollback:
// the batch processor isolates each item this way while the batch's audit
// entry commits with the surviving writes.
type pgxUnitOfWork struct {
	db DB
}

var _ portsrepo.UnitOfWork = (*pgxUnitOfWork)(nil)

func (u *pgxUnitOfWork) RunAtomic(ctx context.Context, fn func(tx portsrepo.TxRepositories) error) error {
	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(newTxRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txRepositories binds the repositories to one open transaction.
type txRepositories struct {
	pgxUnitOfWork
	budgets    *PgxBudgetRepository
	categories *PgxCategoryRepository
	audit      *PgxAuditRepository
}

var _ portsrepo.TxRepositories = (*txRepositories)(nil)

func newTxRepositories(tx pgx.Tx) *txRepositories {
	return &txRepositories{
		pgxUnitOfWork: pgxUnitOfWork{db: tx},
		budgets:       newPgxBudgetRepository(tx),
		categories:    newPgxCategoryRepository(tx),
		audit:         newPgxAuditRepository(tx),
	}
}

func (t *txRepositories) Budgets() portsrepo.BudgetRepository { return t.budgets }
func (t *txRepositories) Categories() portsrepo.CategoryRepository { return t.categories }
func (t *txRepositories) Audit() portsrepo.AuditRepository { return t.audit }
