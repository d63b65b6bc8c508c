package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error
	List(ctx context.Context, userID uuid.UUID, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	// GetByCustomer returns all invoices for a customer ordered by issue date
	GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error)
	// GetOpenByCustomer returns the customer's invoices with a positive balance
	// due, excluding void and draft invoices
	GetOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error)
	// GetTotalOutstanding returns the summed balance due across all open invoices
	GetTotalOutstanding(ctx context.Context) (int64, error)
	GetNextInvoiceNumber(ctx context.Context) (int, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination     *pagination.PaginationParams
	Search         string
	Status         *enum.InvoiceStatus
	CustomerID     *uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time
	Outstanding    bool // only invoices with balance_due > 0
	SortBy         string
	SortOrder      string
	SkipUserFilter bool // If true, returns all invoices (for super-admin)
}

// InvoiceItemRepository defines the interface for invoice item data operations
type InvoiceItemRepository interface {
	Create(ctx context.Context, item *entity.InvoiceItem) error
	CreateBatch(ctx context.Context, items []entity.InvoiceItem) error
	GetByInvoiceID(ctx context.Context, invoiceID uuid.UUID) ([]entity.InvoiceItem, error)
	DeleteByInvoiceID(ctx context.Context, invoiceID uuid.UUID) error
}
