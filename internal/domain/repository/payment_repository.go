package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// InvoiceUpdate describes a conditioned balance update produced by the
// allocation engine. PriorAmountPaid is the amount_paid the engine read when
// it computed the allocation; the commit must only apply the update if the
// stored value still matches, so a concurrent allocation against the same
// invoice surfaces as a conflict instead of a lost update.
type InvoiceUpdate struct {
	InvoiceID       uuid.UUID
	PriorAmountPaid int64
	AmountPaid      int64
	BalanceDue      int64
	Status          enum.InvoiceStatus
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Payment, error)
	GetWithAllocations(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	List(ctx context.Context, userID uuid.UUID, params *PaymentFilterParams) ([]entity.Payment, int64, error)
	// GetByCustomer returns all payments for a customer ordered by payment date
	GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Payment, error)
	GetNextReceiptNumber(ctx context.Context) (int, error)
	// CommitAllocation persists a payment, its allocation rows and the
	// conditioned invoice updates in a single transaction. Either every
	// write lands or none do. Returns apperror.ErrAllocationConflict when
	// any invoice's amount_paid no longer matches its PriorAmountPaid.
	CommitAllocation(ctx context.Context, payment *entity.Payment, allocations []entity.PaymentAllocation, updates []InvoiceUpdate) error
}

// PaymentFilterParams contains filtering parameters for payment queries
type PaymentFilterParams struct {
	Pagination     *pagination.PaginationParams
	Search         string
	Method         *enum.PaymentMethod
	CustomerID     *uuid.UUID
	StartDate      *time.Time
	EndDate        *time.Time
	SortBy         string
	SortOrder      string
	SkipUserFilter bool // If true, returns all payments (for super-admin)
}
