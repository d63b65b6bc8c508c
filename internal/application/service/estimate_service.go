package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/domain/repository"
	infraRepo "github.com/kipronoh/bizpilot-api/internal/infrastructure/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// EstimateService handles estimate-related operations
type EstimateService struct {
	estimateRepo       repository.EstimateRepository
	estimateDetailRepo repository.EstimateDetailRepository
	productRepo        repository.ProductRepository
	customerRepo       repository.CustomerRepository
}

// NewEstimateService creates a new estimate service
func NewEstimateService(
	estimateRepo repository.EstimateRepository,
	estimateDetailRepo repository.EstimateDetailRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *EstimateService {
	return &EstimateService{
		estimateRepo:       estimateRepo,
		estimateDetailRepo: estimateDetailRepo,
		productRepo:        productRepo,
		customerRepo:       customerRepo,
	}
}

// CreateEstimateInput represents the input for creating an estimate
type CreateEstimateInput struct {
	UserID             uuid.UUID
	CustomerID         *uuid.UUID
	Date               time.Time
	TaxPercentage      float64
	DiscountPercentage float64
	ShippingAmount     float64
	Note               *string
	Status             enum.EstimateStatus
	Items              []EstimateItemInput
}

// EstimateItemInput represents a line item input
type EstimateItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice float64
}

// CreateEstimate creates a new estimate
func (s *EstimateService) CreateEstimate(ctx context.Context, input *CreateEstimateInput) (*entity.Estimate, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	// Generate reference number
	nextNum, err := s.estimateRepo.GetNextReferenceNumber(ctx)
	if err != nil {
		return nil, err
	}
	reference := fmt.Sprintf("EST-%06d", nextNum)

	// Get customer name if customer ID is provided
	var customerName string
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			customerName = customer.Name
		}
	}

	// Calculate subtotal in cents
	var subtotal int64
	for _, item := range input.Items {
		subtotal += int64(item.UnitPrice*100) * int64(item.Quantity)
	}

	// Calculate tax and discount amounts
	taxAmount := int64(float64(subtotal) * input.TaxPercentage / 100)
	discountAmount := int64(float64(subtotal) * input.DiscountPercentage / 100)
	shippingAmount := int64(input.ShippingAmount * 100)
	totalAmount := subtotal + taxAmount - discountAmount + shippingAmount

	estimate := &entity.Estimate{
		TenantID:       tenantID,
		UserID:         input.UserID,
		CustomerID:     input.CustomerID,
		Date:           input.Date,
		Reference:      reference,
		CustomerName:   customerName,
		TaxPercentage:  input.TaxPercentage,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		ShippingAmount: shippingAmount,
		TotalAmount:    totalAmount,
		Status:         input.Status,
		Note:           input.Note,
	}

	if err := s.estimateRepo.Create(ctx, estimate); err != nil {
		return nil, err
	}

	// Create estimate details
	for _, item := range input.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}

		unitPriceCents := int64(item.UnitPrice * 100)
		detail := &entity.EstimateDetail{
			EstimateID:  estimate.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			ProductCode: product.Code,
			Quantity:    item.Quantity,
			UnitPrice:   unitPriceCents,
			SubTotal:    unitPriceCents * int64(item.Quantity),
		}

		if err := s.estimateDetailRepo.Create(ctx, detail); err != nil {
			return nil, err
		}
	}

	// Fetch the complete estimate with details
	return s.estimateRepo.GetWithDetails(ctx, estimate.ID)
}

// GetEstimate retrieves an estimate by ID
func (s *EstimateService) GetEstimate(ctx context.Context, id uuid.UUID) (*entity.Estimate, error) {
	estimate, err := s.estimateRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if estimate == nil {
		return nil, apperror.NewNotFoundError("Estimate")
	}
	return estimate, nil
}

// ListEstimatesInput represents the input for listing estimates
type ListEstimatesInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	Pagination   *pagination.PaginationParams
	Search       string
	Status       *enum.EstimateStatus
	CustomerID   *uuid.UUID
}

// ListEstimates lists estimates with filtering
func (s *EstimateService) ListEstimates(ctx context.Context, input *ListEstimatesInput) (*pagination.PaginatedResult[entity.Estimate], error) {
	params := &repository.EstimateFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		Status:     input.Status,
		CustomerID: input.CustomerID,
	}

	var userID uuid.UUID
	if !input.IsSuperAdmin {
		userID = input.UserID
	}

	estimates, total, err := s.estimateRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(estimates, pag), nil
}

// UpdateEstimateInput represents the input for updating an estimate
type UpdateEstimateInput struct {
	UserID             uuid.UUID
	ID                 uuid.UUID
	IsSuperAdmin       bool
	CustomerID         *uuid.UUID
	Date               time.Time
	TaxPercentage      float64
	DiscountPercentage float64
	ShippingAmount     float64
	Note               *string
	Status             enum.EstimateStatus
	Items              []EstimateItemInput
}

// UpdateEstimate updates an existing estimate
func (s *EstimateService) UpdateEstimate(ctx context.Context, input *UpdateEstimateInput) (*entity.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if estimate == nil {
		return nil, apperror.NewNotFoundError("Estimate")
	}

	// Check permission
	if !input.IsSuperAdmin && estimate.UserID != input.UserID {
		return nil, apperror.ErrForbidden
	}

	// Accepted estimates are frozen
	if estimate.Status == enum.EstimateStatusAccepted {
		return nil, apperror.NewAppError(400, "Accepted estimates cannot be modified")
	}

	// Get customer name if customer ID is provided
	var customerName string
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			customerName = customer.Name
		}
	}

	// Calculate subtotal in cents
	var subtotal int64
	for _, item := range input.Items {
		subtotal += int64(item.UnitPrice*100) * int64(item.Quantity)
	}

	// Calculate tax and discount amounts
	taxAmount := int64(float64(subtotal) * input.TaxPercentage / 100)
	discountAmount := int64(float64(subtotal) * input.DiscountPercentage / 100)
	shippingAmount := int64(input.ShippingAmount * 100)
	totalAmount := subtotal + taxAmount - discountAmount + shippingAmount

	// Update estimate fields
	estimate.CustomerID = input.CustomerID
	estimate.Date = input.Date
	estimate.CustomerName = customerName
	estimate.TaxPercentage = input.TaxPercentage
	estimate.TaxAmount = taxAmount
	estimate.DiscountAmount = discountAmount
	estimate.ShippingAmount = shippingAmount
	estimate.TotalAmount = totalAmount
	estimate.Status = input.Status
	estimate.Note = input.Note

	if err := s.estimateRepo.Update(ctx, estimate); err != nil {
		return nil, err
	}

	// Delete existing details and create new ones
	if err := s.estimateDetailRepo.DeleteByEstimateID(ctx, estimate.ID); err != nil {
		return nil, err
	}

	for _, item := range input.Items {
		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}

		unitPriceCents := int64(item.UnitPrice * 100)
		detail := &entity.EstimateDetail{
			EstimateID:  estimate.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			ProductCode: product.Code,
			Quantity:    item.Quantity,
			UnitPrice:   unitPriceCents,
			SubTotal:    unitPriceCents * int64(item.Quantity),
		}

		if err := s.estimateDetailRepo.Create(ctx, detail); err != nil {
			return nil, err
		}
	}

	return s.estimateRepo.GetWithDetails(ctx, estimate.ID)
}

// DeleteEstimate deletes an estimate
func (s *EstimateService) DeleteEstimate(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if estimate == nil {
		return apperror.NewNotFoundError("Estimate")
	}

	// Check permission
	if !isSuperAdmin && estimate.UserID != userID {
		return apperror.ErrForbidden
	}

	// Delete details first
	if err := s.estimateDetailRepo.DeleteByEstimateID(ctx, id); err != nil {
		return err
	}

	return s.estimateRepo.Delete(ctx, id)
}

// UpdateEstimateStatus updates the status of an estimate
func (s *EstimateService) UpdateEstimateStatus(ctx context.Context, userID, id uuid.UUID, status enum.EstimateStatus, isSuperAdmin bool) error {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if estimate == nil {
		return apperror.NewNotFoundError("Estimate")
	}

	// Check permission
	if !isSuperAdmin && estimate.UserID != userID {
		return apperror.ErrForbidden
	}

	return s.estimateRepo.UpdateStatus(ctx, id, status)
}
