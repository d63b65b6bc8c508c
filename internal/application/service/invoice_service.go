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

// Default payment terms when the caller does not supply a due date
const defaultPaymentTermDays = 30

// InvoiceService handles invoice lifecycle operations
type InvoiceService struct {
	invoiceRepo     repository.InvoiceRepository
	invoiceItemRepo repository.InvoiceItemRepository
	orderRepo       repository.OrderRepository
	customerRepo    repository.CustomerRepository
	tenantRepo      repository.TenantRepository
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	invoiceItemRepo repository.InvoiceItemRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		invoiceItemRepo: invoiceItemRepo,
		orderRepo:       orderRepo,
		customerRepo:    customerRepo,
		tenantRepo:      tenantRepo,
	}
}

// InvoiceItemInput represents a line item input
type InvoiceItemInput struct {
	ProductID   *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   float64
}

// CreateInvoiceInput represents the input for creating an invoice
type CreateInvoiceInput struct {
	UserID        uuid.UUID
	CustomerID    uuid.UUID
	IssueDate     time.Time
	DueDate       *time.Time
	TaxPercentage float64
	Notes         *string
	Items         []InvoiceItemInput
}

func (s *InvoiceService) nextInvoiceNo(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := "INV-"
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if tenant != nil && tenant.Settings.InvoicePrefix != "" {
		prefix = tenant.Settings.InvoicePrefix
	}

	nextNum, err := s.invoiceRepo.GetNextInvoiceNumber(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, nextNum), nil
}

// CreateInvoice creates an open invoice for a customer
func (s *InvoiceService) CreateInvoice(ctx context.Context, input *CreateInvoiceInput) (*entity.Invoice, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	if len(input.Items) == 0 {
		return nil, apperror.NewBadRequestError("Invoice requires at least one line item")
	}

	// Calculate totals in cents
	var subTotal int64
	items := make([]entity.InvoiceItem, 0, len(input.Items))
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Line item quantity must be positive")
		}
		unitPriceCents := int64(item.UnitPrice * 100)
		itemTotal := unitPriceCents * int64(item.Quantity)
		subTotal += itemTotal

		items = append(items, entity.InvoiceItem{
			ProductID:   item.ProductID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPriceCents,
			Total:       itemTotal,
		})
	}

	taxAmount := int64(float64(subTotal) * input.TaxPercentage / 100)
	total := subTotal + taxAmount

	invoiceNo, err := s.nextInvoiceNo(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	issueDate := input.IssueDate
	if issueDate.IsZero() {
		issueDate = time.Now()
	}
	dueDate := issueDate.AddDate(0, 0, defaultPaymentTermDays)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}
	if dueDate.Before(issueDate) {
		return nil, apperror.NewBadRequestError("Due date must not be before issue date")
	}

	invoice := &entity.Invoice{
		TenantID:   tenantID,
		UserID:     input.UserID,
		CustomerID: input.CustomerID,
		InvoiceNo:  invoiceNo,
		IssueDate:  issueDate,
		DueDate:    dueDate,
		Status:     enum.InvoiceStatusOpen,
		SubTotal:   subTotal,
		TaxAmount:  taxAmount,
		Total:      total,
		AmountPaid: 0,
		BalanceDue: total,
		Notes:      input.Notes,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].InvoiceID = invoice.ID
	}
	if err := s.invoiceItemRepo.CreateBatch(ctx, items); err != nil {
		return nil, err
	}

	return s.invoiceRepo.GetWithItems(ctx, invoice.ID)
}

// CreateFromOrder generates an invoice for an existing order, carrying the
// order's totals and line items over
func (s *InvoiceService) CreateFromOrder(ctx context.Context, userID, orderID uuid.UUID, dueDate *time.Time) (*entity.Invoice, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	order, err := s.orderRepo.GetWithDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.CustomerID == nil {
		return nil, apperror.NewBadRequestError("Order has no customer to invoice")
	}
	if order.OrderStatus == enum.OrderStatusCancel {
		return nil, apperror.NewBadRequestError("Cancelled orders cannot be invoiced")
	}
	if order.IsInvoiced() {
		return nil, apperror.NewConflictError("Order already has an invoice")
	}

	invoiceNo, err := s.nextInvoiceNo(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	issueDate := time.Now()
	due := issueDate.AddDate(0, 0, defaultPaymentTermDays)
	if dueDate != nil {
		due = *dueDate
	}

	invoice := &entity.Invoice{
		TenantID:   tenantID,
		UserID:     userID,
		CustomerID: *order.CustomerID,
		OrderID:    &order.ID,
		InvoiceNo:  invoiceNo,
		IssueDate:  issueDate,
		DueDate:    due,
		Status:     enum.InvoiceStatusOpen,
		SubTotal:   order.SubTotal,
		TaxAmount:  order.TaxAmount,
		Total:      order.Total,
		AmountPaid: 0,
		BalanceDue: order.Total,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	items := make([]entity.InvoiceItem, 0, len(order.Details))
	for _, detail := range order.Details {
		productID := detail.ProductID
		items = append(items, entity.InvoiceItem{
			InvoiceID:   invoice.ID,
			ProductID:   &productID,
			Description: detail.Product.Name,
			Quantity:    detail.Quantity,
			UnitPrice:   detail.UnitCost,
			Total:       detail.Total,
		})
	}
	if len(items) > 0 {
		if err := s.invoiceItemRepo.CreateBatch(ctx, items); err != nil {
			return nil, err
		}
	}

	return s.invoiceRepo.GetWithItems(ctx, invoice.ID)
}

// GetInvoice retrieves an invoice with its items and allocations
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	return invoice, nil
}

// ListInvoicesInput represents the input for listing invoices
type ListInvoicesInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	Pagination   *pagination.PaginationParams
	Search       string
	Status       *enum.InvoiceStatus
	CustomerID   *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
	Outstanding  bool
}

// ListInvoices lists invoices with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, input *ListInvoicesInput) (*pagination.PaginatedResult[entity.Invoice], error) {
	params := &repository.InvoiceFilterParams{
		Pagination:     input.Pagination,
		Search:         input.Search,
		Status:         input.Status,
		CustomerID:     input.CustomerID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Outstanding:    input.Outstanding,
		SkipUserFilter: input.IsSuperAdmin,
	}

	var userID uuid.UUID
	if !input.IsSuperAdmin {
		userID = input.UserID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(invoices, pag), nil
}

// VoidInvoice voids an invoice that has not received any payment
func (s *InvoiceService) VoidInvoice(ctx context.Context, userID, id uuid.UUID, isSuperAdmin bool) error {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if invoice == nil {
		return apperror.NewNotFoundError("Invoice")
	}

	if !isSuperAdmin && invoice.UserID != userID {
		return apperror.ErrForbidden
	}

	if invoice.Status == enum.InvoiceStatusVoid {
		return apperror.NewBadRequestError("Invoice is already void")
	}
	if invoice.AmountPaid > 0 {
		return apperror.NewBadRequestError("Invoices with recorded payments cannot be voided")
	}

	invoice.Status = enum.InvoiceStatusVoid
	invoice.BalanceDue = 0
	return s.invoiceRepo.Update(ctx, invoice)
}

// GetOpenInvoices returns a customer's invoices with an outstanding balance,
// oldest due first
func (s *InvoiceService) GetOpenInvoices(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error) {
	customer, err := s.customerRepo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return s.invoiceRepo.GetOpenByCustomer(ctx, customerID)
}
