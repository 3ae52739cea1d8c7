package repositories

import "context"

// TxRepositories is the set of repositories bound to one open transaction.
// It embeds UnitOfWork so callers can open nested scopes (savepoints):
// a failure inside a nested scope rolls back only that scope's writes.
type TxRepositories interface {
	UnitOfWork
	Budgets() BudgetRepository
	Categories() CategoryRepository
	Audit() AuditRepository
}

// UnitOfWork runs fn within one database transaction. Every repository handed
// to fn writes through that transaction; nested RunAtomic calls create
// savepoints. The batch processor relies on this to isolate per-item failures
// while keeping the final audit append atomic with the surviving mutations.
type UnitOfWork interface {
	RunAtomic(ctx context.Context, fn func(tx TxRepositories) error) error
}

// RepositoryProvider bundles the concrete repositories for service wiring.
type RepositoryProvider struct {
	Budget    BudgetRepository
	Category  CategoryRepository
	Audit     AuditRepository
	User      UserRepository
	Reporting ReportingRepository
	UoW       UnitOfWork
}
