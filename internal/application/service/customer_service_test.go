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

func strPtr(s string) *string { return &s }

func TestCreateCustomerStoresContactAndTaxDetails(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := NewCustomerService(repo)

	tenantID := uuid.New()
	userID := uuid.New()
	ctx := infraRepo.WithTenant(context.Background(), tenantID)

	customer, err := svc.CreateCustomer(ctx, &CreateCustomerInput{
		UserID: userID,
		Name:   "Otieno & Sons",
		Email:  strPtr("accounts@otieno.example"),
		Phone:  strPtr("+254700000001"),
		TaxPin: strPtr("A001234567Z"),
	})
	require.NoError(t, err)

	assert.Equal(t, tenantID, customer.TenantID)
	assert.Equal(t, userID, customer.UserID)
	require.NotNil(t, customer.TaxPin)
	assert.Equal(t, "A001234567Z", *customer.TaxPin)

	stored, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.NotNil(t, stored.TaxPin)
	assert.Equal(t, "A001234567Z", *stored.TaxPin)
}

func TestCreateCustomerRequiresTenantContext(t *testing.T) {
	svc := NewCustomerService(newFakeCustomerRepo())

	_, err := svc.CreateCustomer(context.Background(), &CreateCustomerInput{
		UserID: uuid.New(),
		Name:   "Otieno & Sons",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestUpdateCustomerChangesTaxPin(t *testing.T) {
	userID := uuid.New()
	customer := &entity.Customer{
		ID:     uuid.New(),
		UserID: userID,
		Name:   "Otieno & Sons",
	}
	repo := newFakeCustomerRepo(customer)
	svc := NewCustomerService(repo)

	updated, err := svc.UpdateCustomer(context.Background(), &UpdateCustomerInput{
		UserID: userID,
		ID:     customer.ID,
		TaxPin: strPtr("A009876543B"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.TaxPin)
	assert.Equal(t, "A009876543B", *updated.TaxPin)
}

func TestUpdateCustomerForbiddenForOtherUsers(t *testing.T) {
	customer := &entity.Customer{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Name:   "Otieno & Sons",
	}
	svc := NewCustomerService(newFakeCustomerRepo(customer))

	_, err := svc.UpdateCustomer(context.Background(), &UpdateCustomerInput{
		UserID: uuid.New(),
		ID:     customer.ID,
		Name:   strPtr("Hijacked"),
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
