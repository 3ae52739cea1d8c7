package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/cache"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/core/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

func decimalPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func stringPtr(s string) *string { return &s }

// --- Test Suite ---
type BudgetServiceTestSuite struct {
	suite.Suite
	mockBudgetRepo   *MockBudgetRepository
	mockCategoryRepo *MockCategoryRepository
	mockAuditRepo    *MockAuditRepository
	service          portssvc.BudgetSvcFacade

	admin  domain.Actor
	gestor domain.Actor
	viewer domain.Actor
	cat    *domain.Category
}

func (s *BudgetServiceTestSuite) SetupTest() {
	s.mockBudgetRepo = new(MockBudgetRepository)
	s.mockCategoryRepo = new(MockCategoryRepository)
	s.mockAuditRepo = new(MockAuditRepository)

	repos := portsrepo.RepositoryProvider{
		Budget:   s.mockBudgetRepo,
		Category: s.mockCategoryRepo,
		Audit:    s.mockAuditRepo,
		UoW: &fakeUnitOfWork{
			budgets:    s.mockBudgetRepo,
			categories: s.mockCategoryRepo,
			audit:      s.mockAuditRepo,
		},
	}
	s.service = services.NewBudgetService(repos, domain.ApprovedEditPolicy{}, cache.NewTTLCache[domain.FilterValues](time.Minute))

	s.admin = domain.Actor{UserID: uuid.NewString(), Name: "Ana Admin", Role: domain.RoleAdmin}
	s.gestor = domain.Actor{UserID: uuid.NewString(), Name: "Gabriel Gestor", Role: domain.RoleGestor}
	s.viewer = domain.Actor{UserID: uuid.NewString(), Name: "Vera Viewer", Role: domain.RoleViewer}
	s.cat = &domain.Category{
		CategoryID: uuid.NewString(),
		Name:       "Energia Elétrica",
		UF:         "SP",
		CostCenter: "Master SP",
		Group:      "Utilidades",
	}
}

func (s *BudgetServiceTestSuite) draftEntry() *domain.BudgetEntry {
	planned := decimal.RequireFromString("1000.00")
	actual := decimal.RequireFromString("750.00")
	return &domain.BudgetEntry{
		BudgetID:   uuid.NewString(),
		CategoryID: s.cat.CategoryID,
		Month:      domain.Janeiro,
		Year:       2025,
		Planned:    planned,
		Actual:     actual,
		Variance:   actual.Sub(planned),
		Status:     domain.StatusDraft,
	}
}

// --- Upsert ---

func (s *BudgetServiceTestSuite) TestUpsert_CreatesDraft() {
	ctx := context.Background()
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Janeiro),
		Year:       2025,
		Planned:    decimalPtr("1000.00"),
		Actual:     decimalPtr("750.00"),
	}

	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(nil, apperrors.ErrNotFound).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockBudgetRepo.On("Save", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusDraft &&
			e.Variance.Equal(decimal.RequireFromString("-250.00")) &&
			e.CreatedBy == s.admin.UserID
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		return a.Kind == domain.KindEntryCreate && a.ActorID == s.admin.UserID
	})).Return(nil).Once()

	entry, created, err := s.service.Upsert(ctx, req, s.admin)

	s.Require().NoError(err)
	s.True(created)
	s.Require().NotNil(entry)
	s.True(entry.Variance.Equal(decimal.RequireFromString("-250.00")))
	s.mockBudgetRepo.AssertExpectations(s.T())
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestUpsert_UpdatesExistingRecomputesVariance() {
	ctx := context.Background()
	existing := s.draftEntry()
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Janeiro),
		Year:       2025,
		Actual:     decimalPtr("1100.00"),
	}

	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(existing, nil).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.BudgetID == existing.BudgetID &&
			e.Planned.Equal(decimal.RequireFromString("1000.00")) &&
			e.Variance.Equal(decimal.RequireFromString("100.00"))
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(nil).Once()

	entry, created, err := s.service.Upsert(ctx, req, s.admin)

	s.Require().NoError(err)
	s.False(created)
	s.True(entry.Variance.Equal(decimal.RequireFromString("100.00")))
	s.mockBudgetRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestUpsert_GestorMayNotEdit() {
	ctx := context.Background()
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Janeiro),
		Year:       2025,
		Planned:    decimalPtr("10.00"),
	}

	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(nil, apperrors.ErrNotFound).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()

	_, _, err := s.service.Upsert(ctx, req, s.gestor)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestUpsert_DirectApprovedStatusRejected() {
	ctx := context.Background()
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Janeiro),
		Year:       2025,
		Status:     stringPtr(string(domain.StatusApproved)),
	}

	_, _, err := s.service.Upsert(ctx, req, s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "FindByNaturalKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestUpsert_InvalidMonth() {
	ctx := context.Background()
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Month("January")),
		Year:       2025,
	}

	_, _, err := s.service.Upsert(ctx, req, s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *BudgetServiceTestSuite) TestUpsert_ApprovedEntryImmutable() {
	ctx := context.Background()
	existing := s.draftEntry()
	existing.Status = domain.StatusApproved
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Janeiro),
		Year:       2025,
		Planned:    decimalPtr("2000.00"),
	}

	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(existing, nil).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()

	_, _, err := s.service.Upsert(ctx, req, s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestUpsert_ApprovedEntryActualOnlyAllowed() {
	ctx := context.Background()
	existing := s.draftEntry()
	existing.Status = domain.StatusApproved
	req := dto.UpsertBudgetRequest{
		CategoryID: s.cat.CategoryID,
		Month:      dto.MonthValueOf(domain.Janeiro),
		Year:       2025,
		Actual:     decimalPtr("900.00"),
	}

	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(existing, nil).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusApproved &&
			e.Actual.Equal(decimal.RequireFromString("900.00")) &&
			e.Variance.Equal(decimal.RequireFromString("-100.00"))
	})).Return(nil).Once()
	// Post-approval edits must carry the before/after snapshots.
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.EntryWriteDetails)
		return ok && details.Before != nil && details.After != nil
	})).Return(nil).Once()

	entry, created, err := s.service.Upsert(ctx, req, s.gestor)

	s.Require().NoError(err)
	s.False(created)
	s.Equal(domain.StatusApproved, entry.Status)
	s.mockAuditRepo.AssertExpectations(s.T())
}

// --- Approve / Reject / Delete ---

func (s *BudgetServiceTestSuite) TestApprove_Success() {
	ctx := context.Background()
	entry := s.draftEntry()
	entry.Status = domain.StatusPendingApproval

	s.mockBudgetRepo.On("FindByID", ctx, entry.BudgetID).Return(entry, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusApproved && e.ApprovedBy != nil && *e.ApprovedBy == s.gestor.UserID
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		return a.Kind == domain.KindEntryApprove
	})).Return(nil).Once()

	approved, err := s.service.Approve(ctx, entry.BudgetID, s.gestor)

	s.Require().NoError(err)
	s.Equal(domain.StatusApproved, approved.Status)
	s.Require().NotNil(approved.ApprovedAt)
	s.mockBudgetRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestApprove_AlreadyApproved() {
	ctx := context.Background()
	entry := s.draftEntry()
	entry.Status = domain.StatusApproved

	s.mockBudgetRepo.On("FindByID", ctx, entry.BudgetID).Return(entry, nil).Once()

	_, err := s.service.Approve(ctx, entry.BudgetID, s.gestor)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrAlreadyApproved)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
	s.mockAuditRepo.AssertNotCalled(s.T(), "Append", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestApprove_AdminForbidden() {
	ctx := context.Background()

	_, err := s.service.Approve(ctx, uuid.NewString(), s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "FindByID", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestReject_DefaultReasonAndApprovalCleared() {
	ctx := context.Background()
	entry := s.draftEntry()
	entry.Status = domain.StatusPendingApproval
	previously := uuid.NewString()
	entry.ApprovedBy = &previously

	s.mockBudgetRepo.On("FindByID", ctx, entry.BudgetID).Return(entry, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusRejected && e.ApprovedBy == nil && e.ApprovedAt == nil
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.RejectDetails)
		return ok && details.Reason == domain.DefaultRejectReason
	})).Return(nil).Once()

	rejected, err := s.service.Reject(ctx, entry.BudgetID, "", s.gestor)

	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, rejected.Status)
	s.Nil(rejected.ApprovedBy)
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestDelete_ApprovedBlocked() {
	ctx := context.Background()
	entry := s.draftEntry()
	entry.Status = domain.StatusApproved

	s.mockBudgetRepo.On("FindByID", ctx, entry.BudgetID).Return(entry, nil).Once()

	err := s.service.Delete(ctx, entry.BudgetID, s.admin)

	s.Require().Error(err)
	var invalidErr *apperrors.InvalidTransitionError
	s.ErrorAs(err, &invalidErr)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

// --- Batch operations ---

func (s *BudgetServiceTestSuite) TestBatchUpsert_PartialFailure() {
	ctx := context.Background()
	unknownCat := uuid.NewString()
	items := []dto.BatchBudgetItem{
		{
			CategoryID: s.cat.CategoryID,
			Month:      dto.MonthValueOf(domain.Janeiro),
			Year:       2025,
			Planned:    decimalPtr("500.00"),
		},
		{
			CategoryID: unknownCat,
			Month:      dto.MonthValueOf(domain.Fevereiro),
			Year:       2025,
			Planned:    decimalPtr("500.00"),
		},
	}

	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockCategoryRepo.On("FindByID", ctx, unknownCat).
		Return(nil, apperrors.NewNotFoundError("categoria não encontrada")).Once()
	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(nil, apperrors.ErrNotFound).Once()
	s.mockBudgetRepo.On("Save", ctx, mock.AnythingOfType("domain.BudgetEntry")).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.BatchUpsertDetails)
		return ok && details.Created == 1 && len(details.Errors) == 1
	})).Return(nil).Once()

	result, err := s.service.BatchUpsert(ctx, items, s.admin)

	s.Require().NoError(err)
	s.Equal(1, result.Created)
	s.Equal(0, result.Updated)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "Item 2:")
	s.True(result.HasErrors())
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestBatchUpsert_EmptyList() {
	_, err := s.service.BatchUpsert(context.Background(), nil, s.admin)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *BudgetServiceTestSuite) TestBatchUpsert_GestorActualizesApprovedEntry() {
	ctx := context.Background()
	approved := s.draftEntry()
	approved.Status = domain.StatusApproved
	items := []dto.BatchBudgetItem{
		{
			CategoryID: s.cat.CategoryID,
			Month:      dto.MonthValueOf(domain.Janeiro),
			Year:       2025,
			Actual:     decimalPtr("820.00"),
		},
	}

	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(approved, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusApproved &&
			e.Actual.Equal(decimal.RequireFromString("820.00")) &&
			e.Variance.Equal(decimal.RequireFromString("-180.00"))
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.BatchUpsertDetails)
		return ok && details.Updated == 1 && len(details.Errors) == 0
	})).Return(nil).Once()

	result, err := s.service.BatchUpsert(ctx, items, s.gestor)

	s.Require().NoError(err)
	s.Equal(0, result.Created)
	s.Equal(1, result.Updated)
	s.Empty(result.Errors)
	s.mockBudgetRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestBatchUpsert_GestorBlockedPerItemOutsideActualization() {
	ctx := context.Background()
	draft := s.draftEntry()
	items := []dto.BatchBudgetItem{
		{
			CategoryID: s.cat.CategoryID,
			Month:      dto.MonthValueOf(domain.Janeiro),
			Year:       2025,
			Planned:    decimalPtr("2000.00"),
		},
		{
			CategoryID: s.cat.CategoryID,
			Month:      dto.MonthValueOf(domain.Fevereiro),
			Year:       2025,
			Actual:     decimalPtr("100.00"),
		},
	}

	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Twice()
	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Janeiro, 2025).
		Return(draft, nil).Once()
	s.mockBudgetRepo.On("FindByNaturalKey", ctx, s.cat.CategoryID, domain.Fevereiro, 2025).
		Return(nil, apperrors.ErrNotFound).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.BatchUpsertDetails)
		return ok && details.Created == 0 && details.Updated == 0 && len(details.Errors) == 2
	})).Return(nil).Once()

	result, err := s.service.BatchUpsert(ctx, items, s.gestor)

	s.Require().NoError(err)
	s.Equal(0, result.Created)
	s.Equal(0, result.Updated)
	s.Require().Len(result.Errors, 2)
	s.Contains(result.Errors[0], "Item 1:")
	s.Contains(result.Errors[1], "Item 2:")
	s.mockBudgetRepo.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestBatchUpsert_ViewerForbidden() {
	items := []dto.BatchBudgetItem{
		{
			CategoryID: s.cat.CategoryID,
			Month:      dto.MonthValueOf(domain.Janeiro),
			Year:       2025,
			Actual:     decimalPtr("100.00"),
		},
	}

	_, err := s.service.BatchUpsert(context.Background(), items, s.viewer)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
	s.mockBudgetRepo.AssertNotCalled(s.T(), "FindByNaturalKey", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BudgetServiceTestSuite) TestBatchSubmit_SkipsIneligibleSilently() {
	ctx := context.Background()
	draft := s.draftEntry()
	approved := s.draftEntry()
	approved.Status = domain.StatusApproved

	s.mockBudgetRepo.On("FindByID", ctx, draft.BudgetID).Return(draft, nil).Once()
	s.mockBudgetRepo.On("FindByID", ctx, approved.BudgetID).Return(approved, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.BudgetID == draft.BudgetID && e.Status == domain.StatusPendingApproval
	})).Return(nil).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.BatchSubmitDetails)
		return ok && details.Total == 1 && len(details.Submitted) == 1
	})).Return(nil).Once()

	result, err := s.service.BatchSubmit(ctx, []string{draft.BudgetID, approved.BudgetID}, s.admin)

	s.Require().NoError(err)
	s.Equal(1, result.UpdatedCount)
	s.Empty(result.Errors)
	s.False(result.HasErrors())
	s.mockBudgetRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestBatchApprove_UnknownIDReported() {
	ctx := context.Background()
	pending := s.draftEntry()
	pending.Status = domain.StatusPendingApproval
	missing := uuid.NewString()

	s.mockBudgetRepo.On("FindByID", ctx, pending.BudgetID).Return(pending, nil).Once()
	s.mockBudgetRepo.On("FindByID", ctx, missing).
		Return(nil, apperrors.NewNotFoundError("orçamento não encontrado")).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusApproved
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.AnythingOfType("domain.AuditEntry")).Return(nil).Once()

	result, err := s.service.BatchApprove(ctx, []string{pending.BudgetID, missing}, s.gestor)

	s.Require().NoError(err)
	s.Equal(1, result.UpdatedCount)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], missing)
	s.True(result.HasErrors())
}

func (s *BudgetServiceTestSuite) TestBatchReject_SharedReasonRecorded() {
	ctx := context.Background()
	pending := s.draftEntry()
	pending.Status = domain.StatusPendingApproval

	s.mockBudgetRepo.On("FindByID", ctx, pending.BudgetID).Return(pending, nil).Once()
	s.mockBudgetRepo.On("Update", ctx, mock.MatchedBy(func(e domain.BudgetEntry) bool {
		return e.Status == domain.StatusRejected && e.ApprovedBy == nil
	})).Return(nil).Once()
	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.BatchRejectDetails)
		return ok && details.Reason == "Acima do teto" && details.GestorName == s.gestor.Name
	})).Return(nil).Once()

	result, err := s.service.BatchReject(ctx, []string{pending.BudgetID}, "Acima do teto", s.gestor)

	s.Require().NoError(err)
	s.Equal(1, result.UpdatedCount)
	s.Require().Len(result.Detail, 1)
	s.Equal(s.cat.Name, result.Detail[0].CategoryName)
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *BudgetServiceTestSuite) TestBatchSubmit_NoAuditWhenNothingChanged() {
	ctx := context.Background()
	approved := s.draftEntry()
	approved.Status = domain.StatusApproved

	s.mockBudgetRepo.On("FindByID", ctx, approved.BudgetID).Return(approved, nil).Once()

	result, err := s.service.BatchSubmit(ctx, []string{approved.BudgetID}, s.admin)

	s.Require().NoError(err)
	s.Equal(0, result.UpdatedCount)
	s.mockAuditRepo.AssertNotCalled(s.T(), "Append", mock.Anything, mock.Anything)
}

// --- Reads ---

func (s *BudgetServiceTestSuite) TestMonthGrid_FillsMissingMonths() {
	ctx := context.Background()
	stored := s.draftEntry()

	s.mockCategoryRepo.On("FindByID", ctx, s.cat.CategoryID).Return(s.cat, nil).Once()
	s.mockBudgetRepo.On("ListByCategoryYear", ctx, s.cat.CategoryID, 2025).
		Return([]domain.BudgetEntry{*stored}, nil).Once()

	grid, err := s.service.MonthGrid(ctx, s.cat.CategoryID, 2025)

	s.Require().NoError(err)
	s.Require().Len(grid.Entries, 12)
	s.Equal(stored.BudgetID, grid.Entries[0].BudgetID)
	// Virtual rows carry no id and read as drafts.
	s.Empty(grid.Entries[1].BudgetID)
	s.Equal(string(domain.StatusDraft), grid.Entries[1].Status)
	s.Equal(domain.Fevereiro, grid.Entries[1].Month)
}

func (s *BudgetServiceTestSuite) TestFilterValues_Cached() {
	ctx := context.Background()
	values := &domain.FilterValues{Years: []int{2025, 2024}}

	s.mockBudgetRepo.On("ListFilterValues", ctx).Return(values, nil).Once()

	first, err := s.service.FilterValues(ctx)
	s.Require().NoError(err)
	second, err := s.service.FilterValues(ctx)
	s.Require().NoError(err)

	s.Equal(first.Years, second.Years)
	s.mockBudgetRepo.AssertNumberOfCalls(s.T(), "ListFilterValues", 1)
}

func TestBudgetServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BudgetServiceTestSuite))
}
