package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/domain/repository"
	infraRepo "github.com/kipronoh/bizpilot-api/internal/infrastructure/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/kipronoh/bizpilot-api/pkg/email"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// Number of times an allocation is recomputed and retried after a concurrent
// write invalidated the balances it was based on
const allocationMaxAttempts = 3

// AllocationPolicy decides the order in which a customer's open invoices
// receive portions of a payment.
type AllocationPolicy interface {
	Sort(invoices []entity.Invoice)
}

// OldestDueFirst allocates to the invoice with the earliest due date first,
// breaking ties by issue date and then invoice number so the order is
// deterministic.
type OldestDueFirst struct{}

func (OldestDueFirst) Sort(invoices []entity.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.IssueDate.Equal(b.IssueDate) {
			return a.IssueDate.Before(b.IssueDate)
		}
		return a.InvoiceNo < b.InvoiceNo
	})
}

// customerLocks serializes allocations per customer so two concurrent payments
// for the same customer are applied one after the other instead of racing.
// Entries are never evicted; the map is bounded by the number of distinct
// customers paid through this process.
type customerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func newCustomerLocks() *customerLocks {
	return &customerLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

func (c *customerLocks) get(customerID uuid.UUID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, exists := c.locks[customerID]
	if !exists {
		lock = &sync.Mutex{}
		c.locks[customerID] = lock
	}
	return lock
}

// PaymentService records customer payments and allocates them across open
// invoices.
type PaymentService struct {
	paymentRepo  repository.PaymentRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	tenantRepo   repository.TenantRepository
	emailService *email.EmailService
	policy       AllocationPolicy
	locks        *customerLocks
}

// NewPaymentService creates a new payment service using oldest-due-first
// allocation. emailService may be nil; receipt emails are then skipped.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
	emailService *email.EmailService,
) *PaymentService {
	return &PaymentService{
		paymentRepo:  paymentRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		tenantRepo:   tenantRepo,
		emailService: emailService,
		policy:       OldestDueFirst{},
		locks:        newCustomerLocks(),
	}
}

// AllocatePaymentInput represents a payment to record and allocate
type AllocatePaymentInput struct {
	UserID      uuid.UUID
	CustomerID  uuid.UUID
	Amount      float64
	Method      enum.PaymentMethod
	PaymentDate time.Time
	Notes       *string
}

// AllocatePayment records a payment and splits it across the customer's open
// invoices, oldest due first. Each invoice receives the smaller of its balance
// due and what remains of the payment; anything left after the last open
// invoice is kept on the payment as unapplied credit. The payment, its
// allocation rows and the invoice balance updates are committed atomically,
// and the whole computation is retried against fresh balances when a
// concurrent allocation got there first.
func (s *PaymentService) AllocatePayment(ctx context.Context, input *AllocatePaymentInput) (*entity.Payment, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	amount := int64(math.Round(input.Amount * 100))
	if amount <= 0 {
		return nil, apperror.NewBadRequestError("Payment amount must be positive")
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	lock := s.locks.get(input.CustomerID)
	lock.Lock()
	defer lock.Unlock()

	var lastErr error
	for attempt := 0; attempt < allocationMaxAttempts; attempt++ {
		invoices, err := s.invoiceRepo.GetOpenByCustomer(ctx, input.CustomerID)
		if err != nil {
			return nil, err
		}
		if len(invoices) == 0 {
			return nil, apperror.ErrNoOutstandingBalance
		}

		s.policy.Sort(invoices)

		remaining := amount
		allocations := make([]entity.PaymentAllocation, 0, len(invoices))
		updates := make([]repository.InvoiceUpdate, 0, len(invoices))

		for i := range invoices {
			if remaining == 0 {
				break
			}
			inv := &invoices[i]
			if !inv.IsOpen() {
				continue
			}

			applied := remaining
			if inv.BalanceDue < applied {
				applied = inv.BalanceDue
			}

			priorPaid := inv.AmountPaid
			inv.ApplyAmount(applied)
			remaining -= applied

			allocations = append(allocations, entity.PaymentAllocation{
				InvoiceID:     inv.ID,
				InvoiceNo:     inv.InvoiceNo,
				AmountApplied: applied,
			})
			updates = append(updates, repository.InvoiceUpdate{
				InvoiceID:       inv.ID,
				PriorAmountPaid: priorPaid,
				AmountPaid:      inv.AmountPaid,
				BalanceDue:      inv.BalanceDue,
				Status:          inv.Status,
			})
		}

		receiptNo, err := s.nextReceiptNo(ctx, tenantID)
		if err != nil {
			return nil, err
		}

		payment := &entity.Payment{
			TenantID:        tenantID,
			UserID:          input.UserID,
			CustomerID:      input.CustomerID,
			ReceiptNo:       receiptNo,
			PaymentDate:     paymentDate,
			Method:          input.Method,
			Amount:          amount,
			UnappliedAmount: remaining,
			Notes:           input.Notes,
		}

		err = s.paymentRepo.CommitAllocation(ctx, payment, allocations, updates)
		if err == nil {
			s.notifyCustomer(customer, payment)
			return s.paymentRepo.GetWithAllocations(ctx, payment.ID)
		}
		if !errors.Is(err, apperror.ErrAllocationConflict) {
			invoiceIDs := make([]uuid.UUID, len(updates))
			for i, u := range updates {
				invoiceIDs[i] = u.InvoiceID
			}
			return nil, apperror.NewAllocationPersistenceError(err, input.CustomerID, amount, invoiceIDs)
		}
		lastErr = err
	}

	return nil, lastErr
}

// notifyCustomer emails a payment confirmation to the customer. Best effort:
// the allocation has already committed, so a delivery failure is only logged.
func (s *PaymentService) notifyCustomer(customer *entity.Customer, payment *entity.Payment) {
	if s.emailService == nil || customer.Email == nil || *customer.Email == "" {
		return
	}

	businessName := ""
	tenant, err := s.tenantRepo.GetByID(context.Background(), payment.TenantID)
	if err == nil && tenant != nil {
		businessName = tenant.Name
	}

	toEmail := *customer.Email
	data := email.ReceiptEmailData{
		BusinessName: businessName,
		CustomerName: customer.Name,
		ReceiptNo:    payment.ReceiptNo,
		Date:         payment.PaymentDate.Format("2006-01-02"),
		Method:       payment.Method.String(),
		Amount:       float64(payment.Amount) / 100,
	}
	go func() {
		if err := s.emailService.SendPaymentReceiptEmail(toEmail, data); err != nil {
			log.Printf("Warning: failed to send receipt email for %s: %v", data.ReceiptNo, err)
		}
	}()
}

func (s *PaymentService) nextReceiptNo(ctx context.Context, tenantID uuid.UUID) (string, error) {
	prefix := "RCT-"
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if tenant != nil && tenant.Settings.ReceiptPrefix != "" {
		prefix = tenant.Settings.ReceiptPrefix
	}

	nextNum, err := s.paymentRepo.GetNextReceiptNumber(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, nextNum), nil
}

// GetPayment retrieves a payment with its allocations
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	payment, err := s.paymentRepo.GetWithAllocations(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}
	return payment, nil
}

// ListPaymentsInput represents the input for listing payments
type ListPaymentsInput struct {
	UserID       uuid.UUID
	IsSuperAdmin bool
	Pagination   *pagination.PaginationParams
	Search       string
	Method       *enum.PaymentMethod
	CustomerID   *uuid.UUID
	StartDate    *time.Time
	EndDate      *time.Time
}

// ListPayments lists payments with filtering
func (s *PaymentService) ListPayments(ctx context.Context, input *ListPaymentsInput) (*pagination.PaginatedResult[entity.Payment], error) {
	params := &repository.PaymentFilterParams{
		Pagination:     input.Pagination,
		Search:         input.Search,
		Method:         input.Method,
		CustomerID:     input.CustomerID,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		SkipUserFilter: input.IsSuperAdmin,
	}

	var userID uuid.UUID
	if !input.IsSuperAdmin {
		userID = input.UserID
	}

	payments, total, err := s.paymentRepo.List(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(payments, pag), nil
}

// BuildReceipt composes a printable receipt for a recorded payment, including
// each allocated invoice's current balance due. Later payments may have moved
// a balance since this payment was allocated; the receipt reflects the ledger
// as of print time.
func (s *PaymentService) BuildReceipt(ctx context.Context, paymentID uuid.UUID) (*entity.PaymentReceipt, error) {
	payment, err := s.paymentRepo.GetWithAllocations(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, apperror.NewNotFoundError("Payment")
	}

	header := entity.Letterhead{}
	tenant, err := s.tenantRepo.GetByID(ctx, payment.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant != nil {
		header = tenant.Letterhead()
	}

	customerName := ""
	if payment.Customer != nil {
		customerName = payment.Customer.Name
	}

	lines := make([]entity.ReceiptAllocationLine, 0, len(payment.Allocations))
	for _, alloc := range payment.Allocations {
		invoice, err := s.invoiceRepo.GetByID(ctx, alloc.InvoiceID)
		if err != nil {
			return nil, err
		}

		balanceAfter := 0.0
		if invoice != nil {
			balanceAfter = invoice.GetBalanceDueDecimal()
		}
		lines = append(lines, entity.ReceiptAllocationLine{
			InvoiceNo:     alloc.InvoiceNo,
			AmountApplied: float64(alloc.AmountApplied) / 100,
			BalanceAfter:  balanceAfter,
		})
	}

	notes := ""
	if payment.Notes != nil {
		notes = *payment.Notes
	}

	return &entity.PaymentReceipt{
		Header:          header,
		ReceiptNo:       payment.ReceiptNo,
		Date:            payment.PaymentDate.Format("2006-01-02"),
		Customer:        customerName,
		Method:          payment.Method.String(),
		Notes:           notes,
		Lines:           lines,
		Amount:          float64(payment.Amount) / 100,
		AmountApplied:   float64(payment.AppliedAmount()) / 100,
		UnappliedCredit: float64(payment.UnappliedAmount) / 100,
	}, nil
}
