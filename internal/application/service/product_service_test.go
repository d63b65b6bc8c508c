package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	infraRepo "github.com/kipronoh/bizpilot-api/internal/infrastructure/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type importFixture struct {
	svc      *ProductService
	products *fakeProductRepo
	userID   uuid.UUID
	ctx      context.Context
}

func newImportFixture() *importFixture {
	productRepo := newFakeProductRepo()
	categoryRepo := &fakeCategoryRepo{categories: []entity.Category{
		{ID: uuid.New(), Name: "Beverages"},
	}}
	unitRepo := &fakeUnitRepo{units: []entity.Unit{
		{ID: uuid.New(), Name: "Crate"},
	}}

	return &importFixture{
		svc:      NewProductService(productRepo, categoryRepo, unitRepo),
		products: productRepo,
		userID:   uuid.New(),
		ctx:      infraRepo.WithTenant(context.Background(), uuid.New()),
	}
}

func TestImportProductsBatchCreatesValidRows(t *testing.T) {
	f := newImportFixture()

	result, err := f.svc.ImportProducts(f.ctx, f.userID, []ImportProductRow{
		{Name: "Cola 500ml", Code: "P-001", Quantity: 24, SellingPrice: 1.50},
		{Name: "Soda Water", Code: "P-002", Quantity: 12, SellingPrice: 1.20, CategoryName: "beverages", UnitName: "Crate"},
		{Name: "", Code: "P-003"},
		{Name: "Cola Again", Code: "P-001"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "name", result.Errors[0].Field)
	assert.Equal(t, "code", result.Errors[1].Field)

	// All valid rows land in one batch insert
	assert.Equal(t, 1, f.products.batches)
	assert.Len(t, f.products.products, 2)

	matched, err := f.products.GetByCode(f.ctx, "P-002")
	require.NoError(t, err)
	require.NotNil(t, matched)
	assert.NotNil(t, matched.CategoryID)
	assert.NotNil(t, matched.UnitID)
	assert.Equal(t, f.userID, matched.UserID)
}

func TestImportProductsRejectsExistingCode(t *testing.T) {
	f := newImportFixture()
	require.NoError(t, f.products.Create(f.ctx, &entity.Product{
		Name: "Existing", Code: "P-100", Slug: "existing",
	}))

	result, err := f.svc.ImportProducts(f.ctx, f.userID, []ImportProductRow{
		{Name: "Clashing", Code: "P-100"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, f.products.batches)
}

func TestImportProductsRequiresTenantContext(t *testing.T) {
	f := newImportFixture()

	_, err := f.svc.ImportProducts(context.Background(), f.userID, []ImportProductRow{
		{Name: "Cola 500ml"},
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}
