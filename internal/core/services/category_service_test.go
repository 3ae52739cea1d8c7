package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"

	"github.com/orcaplan/orcaplan-backend/internal/apperrors"
	"github.com/orcaplan/orcaplan-backend/internal/cache"
	"github.com/orcaplan/orcaplan-backend/internal/core/domain"
	portsrepo "github.com/orcaplan/orcaplan-backend/internal/core/ports/repositories"
	portssvc "github.com/orcaplan/orcaplan-backend/internal/core/ports/services"
	"github.com/orcaplan/orcaplan-backend/internal/core/services"
	"github.com/orcaplan/orcaplan-backend/internal/dto"
)

type CategoryServiceTestSuite struct {
	suite.Suite
	mockCategoryRepo *MockCategoryRepository
	mockAuditRepo    *MockAuditRepository
	service          portssvc.CategorySvcFacade

	admin  domain.Actor
	gestor domain.Actor
}

func (s *CategoryServiceTestSuite) SetupTest() {
	s.mockCategoryRepo = new(MockCategoryRepository)
	s.mockAuditRepo = new(MockAuditRepository)

	repos := portsrepo.RepositoryProvider{
		Category: s.mockCategoryRepo,
		Audit:    s.mockAuditRepo,
		UoW: &fakeUnitOfWork{
			categories: s.mockCategoryRepo,
			audit:      s.mockAuditRepo,
		},
	}
	s.service = services.NewCategoryService(repos,
		cache.NewTTLCache[domain.FilterValues](time.Minute),
		cache.NewTTLCache[domain.CategoryFilterValues](time.Minute))

	s.admin = domain.Actor{UserID: uuid.NewString(), Name: "Ana Admin", Role: domain.RoleAdmin}
	s.gestor = domain.Actor{UserID: uuid.NewString(), Name: "Gabriel Gestor", Role: domain.RoleGestor}
}

func (s *CategoryServiceTestSuite) TestCreate_Success() {
	ctx := context.Background()
	req := dto.CreateCategoryRequest{
		Name:       "Energia Elétrica",
		UF:         "SP",
		CostCenter: "Master SP",
		Group:      "Utilidades",
		ClassCode:  "4001",
		CostClass:  "Despesa Fixa",
	}

	s.mockCategoryRepo.On("FindByUniqueTuple", ctx, req.Name, req.Group, req.ClassCode).
		Return(nil, apperrors.ErrNotFound).Once()
	s.mockCategoryRepo.On("Save", ctx, mock.MatchedBy(func(c domain.Category) bool {
		return c.Name == req.Name && c.CreatedBy == s.admin.UserID && c.CategoryID != ""
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		return a.Kind == domain.KindCategoryCreate
	})).Return(nil).Once()

	cat, err := s.service.Create(ctx, req, s.admin)

	s.Require().NoError(err)
	s.Equal(req.Name, cat.Name)
	s.mockCategoryRepo.AssertExpectations(s.T())
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *CategoryServiceTestSuite) TestCreate_Duplicate() {
	ctx := context.Background()
	req := dto.CreateCategoryRequest{Name: "Energia Elétrica", Group: "Utilidades", ClassCode: "4001"}
	existing := &domain.Category{CategoryID: uuid.NewString(), Name: req.Name}

	s.mockCategoryRepo.On("FindByUniqueTuple", ctx, req.Name, req.Group, req.ClassCode).
		Return(existing, nil).Once()

	_, err := s.service.Create(ctx, req, s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.mockCategoryRepo.AssertNotCalled(s.T(), "Save", mock.Anything, mock.Anything)
}

func (s *CategoryServiceTestSuite) TestCreate_NonAdminForbidden() {
	_, err := s.service.Create(context.Background(), dto.CreateCategoryRequest{Name: "X"}, s.gestor)
	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrForbidden)
}

func (s *CategoryServiceTestSuite) TestUpdate_AppliesOnlySuppliedFields() {
	ctx := context.Background()
	existing := &domain.Category{
		CategoryID: uuid.NewString(),
		Name:       "Energia Elétrica",
		UF:         "SP",
		Group:      "Utilidades",
	}
	newUF := "RJ"
	req := dto.UpdateCategoryRequest{UF: &newUF}

	s.mockCategoryRepo.On("FindByID", ctx, existing.CategoryID).Return(existing, nil).Once()
	s.mockCategoryRepo.On("Update", ctx, mock.MatchedBy(func(c domain.Category) bool {
		return c.UF == "RJ" && c.Name == existing.Name && c.Group == existing.Group
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.CategoryWriteDetails)
		return ok && details.Before != nil && details.Before.UF == "SP" && details.After.UF == "RJ"
	})).Return(nil).Once()

	cat, err := s.service.Update(ctx, existing.CategoryID, req, s.admin)

	s.Require().NoError(err)
	s.Equal("RJ", cat.UF)
	s.Equal(existing.Name, cat.Name)
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *CategoryServiceTestSuite) TestDelete_BlockedWhileReferenced() {
	ctx := context.Background()
	cat := &domain.Category{CategoryID: uuid.NewString(), Name: "Energia Elétrica"}

	s.mockCategoryRepo.On("FindByID", ctx, cat.CategoryID).Return(cat, nil).Once()
	s.mockCategoryRepo.On("CountBudgetEntries", ctx, cat.CategoryID).Return(3, nil).Once()

	err := s.service.Delete(ctx, cat.CategoryID, s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.mockCategoryRepo.AssertNotCalled(s.T(), "Delete", mock.Anything, mock.Anything)
}

func (s *CategoryServiceTestSuite) TestDelete_Success() {
	ctx := context.Background()
	cat := &domain.Category{CategoryID: uuid.NewString(), Name: "Energia Elétrica"}

	s.mockCategoryRepo.On("FindByID", ctx, cat.CategoryID).Return(cat, nil).Once()
	s.mockCategoryRepo.On("CountBudgetEntries", ctx, cat.CategoryID).Return(0, nil).Once()
	s.mockCategoryRepo.On("Delete", ctx, cat.CategoryID).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		return a.Kind == domain.KindCategoryDelete
	})).Return(nil).Once()

	err := s.service.Delete(ctx, cat.CategoryID, s.admin)

	s.Require().NoError(err)
	s.mockCategoryRepo.AssertExpectations(s.T())
}

// buildSheet assembles an in-memory .xlsx with the given header and rows.
func buildSheet(s *CategoryServiceTestSuite, header []interface{}, dataRows ...[]interface{}) *bytes.Buffer {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	s.Require().NoError(f.SetSheetRow(sheet, "A1", &header))
	for i, row := range dataRows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		s.Require().NoError(err)
		s.Require().NoError(f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	s.Require().NoError(err)
	return buf
}

func (s *CategoryServiceTestSuite) TestImportSpreadsheet_MixedRows() {
	ctx := context.Background()
	header := []interface{}{"CATEGORIA", "UF", "MASTER", "GRUPO", "COD CLASS", "CLASSE CUSTO"}
	buf := buildSheet(s, header,
		[]interface{}{"Energia Elétrica", "SP", "Master SP", "Utilidades", "4001", "Fixa"},
		[]interface{}{"Água", "SP", "Master SP", "Utilidades", "4002", "Fixa"},
		[]interface{}{"", "SP", "Master SP", "Utilidades", "4003", "Fixa"},
	)

	// First row is new, second already exists, third has no name.
	s.mockCategoryRepo.On("FindByUniqueTuple", ctx, "Energia Elétrica", "Utilidades", "4001").
		Return(nil, apperrors.ErrNotFound).Once()
	s.mockCategoryRepo.On("FindByUniqueTuple", ctx, "Água", "Utilidades", "4002").
		Return(&domain.Category{CategoryID: uuid.NewString(), Name: "Água"}, nil).Once()
	s.mockCategoryRepo.On("Save", ctx, mock.MatchedBy(func(c domain.Category) bool {
		return c.Name == "Energia Elétrica" && c.ClassCode == "4001"
	})).Return(nil).Once()
	s.mockAuditRepo.On("Append", ctx, mock.MatchedBy(func(a domain.AuditEntry) bool {
		details, ok := a.Details.(domain.CategoryImportDetails)
		return ok && details.Imported == 1 && details.Errors == 1 && details.Filename == "categorias.xlsx"
	})).Return(nil).Once()

	result, err := s.service.ImportSpreadsheet(ctx, buf, "categorias.xlsx", s.admin)

	s.Require().NoError(err)
	s.Equal(1, result.Imported)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], "Linha 4")
	s.mockCategoryRepo.AssertExpectations(s.T())
	s.mockAuditRepo.AssertExpectations(s.T())
}

func (s *CategoryServiceTestSuite) TestImportSpreadsheet_MissingNameColumn() {
	ctx := context.Background()
	buf := buildSheet(s, []interface{}{"UF", "GRUPO"}, []interface{}{"SP", "Utilidades"})

	_, err := s.service.ImportSpreadsheet(ctx, buf, "categorias.xlsx", s.admin)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
}

func TestCategoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryServiceTestSuite))
}
