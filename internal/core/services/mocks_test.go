package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
)

// --- Mock BudgetRepository ---
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) Save(ctx context.Context, entry domain.BudgetEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBudgetRepository) Update(ctx context.Context, entry domain.BudgetEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBudgetRepository) FindByID(ctx context.Context, budgetID string) (*domain.BudgetEntry, error) {
	args := m.Called(ctx, budgetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetEntry), args.Error(1)
}

func (m *MockBudgetRepository) FindByNaturalKey(ctx context.Context, categoryID string, month domain.Month, year int) (*domain.BudgetEntry, error) {
	args := m.Called(ctx, categoryID, month, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BudgetEntry), args.Error(1)
}

func (m *MockBudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]domain.BudgetEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetEntry), args.Error(1)
}

func (m *MockBudgetRepository) ListByCategoryYear(ctx context.Context, categoryID string, year int) ([]domain.BudgetEntry, error) {
	args := m.Called(ctx, categoryID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BudgetEntry), args.Error(1)
}

func (m *MockBudgetRepository) Delete(ctx context.Context, budgetID string) error {
	args := m.Called(ctx, budgetID)
	return args.Error(0)
}

func (m *MockBudgetRepository) ListFilterValues(ctx context.Context) (*domain.FilterValues, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FilterValues), args.Error(1)
}

// --- Mock CategoryRepository ---
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Save(ctx context.Context, cat domain.Category) error {
	args := m.Called(ctx, cat)
	return args.Error(0)
}

func (m *MockCategoryRepository) Update(ctx context.Context, cat domain.Category) error {
	args := m.Called(ctx, cat)
	return args.Error(0)
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindByUniqueTuple(ctx context.Context, name, group, classCode string) (*domain.Category, error) {
	args := m.Called(ctx, name, group, classCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, filter domain.CategoryFilter) ([]domain.Category, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, categoryID string) error {
	args := m.Called(ctx, categoryID)
	return args.Error(0)
}

func (m *MockCategoryRepository) CountBudgetEntries(ctx context.Context, categoryID string) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *MockCategoryRepository) ListFilterValues(ctx context.Context) (*domain.CategoryFilterValues, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CategoryFilterValues), args.Error(1)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.AuditEntry), args.Int(1), args.Error(2)
}

func (m *MockAuditRepository) FindByID(ctx context.Context, auditID string) (*domain.AuditEntry, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByKind(ctx context.Context, kind domain.AuditKind, affectedTable string) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, kind, affectedTable)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) Summary(ctx context.Context) (*domain.AuditSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuditSummary), args.Error(1)
}

// fakeUnitOfWork hands the same mocks to every scope. Nested RunAtomic calls
// just run the function, so a failing nested scope reports its error without
// any real rollback, which is what the mock-level assertions need.
type fakeUnitOfWork struct {
	budgets    portsrepo.BudgetRepository
	categories portsrepo.CategoryRepository
	audit      portsrepo.AuditRepository
}

func (f *fakeUnitOfWork) RunAtomic(ctx context.Context, fn func(tx portsrepo.TxRepositories) error) error {
	return fn(f)
}

func (f *fakeUnitOfWork) Budgets() portsrepo.BudgetRepository      { return f.budgets }
func (f *fakeUnitOfWork) Categories() portsrepo.CategoryRepository { return f.categories }
func (f *fakeUnitOfWork) Audit() portsrepo.AuditRepository         { return f.audit }
