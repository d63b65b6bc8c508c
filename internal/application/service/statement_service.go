package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/domain/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
)

// StatementService builds customer account statements
type StatementService struct {
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	orderRepo    repository.OrderRepository
	customerRepo repository.CustomerRepository
}

// NewStatementService creates a new statement service
func NewStatementService(
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	customerRepo repository.CustomerRepository,
) *StatementService {
	return &StatementService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		orderRepo:    orderRepo,
		customerRepo: customerRepo,
	}
}

// BuildStatementInput represents the input for building a statement
type BuildStatementInput struct {
	CustomerID uuid.UUID
	StartDate  time.Time
	EndDate    time.Time
	// IncludeOrders adds uninvoiced order charges to the ledger. Invoiced
	// orders are always excluded since their invoice already carries the
	// charge.
	IncludeOrders bool
}

// ledgerEntry is an internal row used while assembling the statement. CreatedAt
// breaks ties between documents dated the same day so the ordering is stable.
type ledgerEntry struct {
	date       time.Time
	createdAt  time.Time
	docType    entity.TransactionType
	documentNo string
	debit      int64
	credit     int64
}

// BuildStatement produces a chronological ledger of the customer's charges and
// payments for the date range. The opening balance folds in every transaction
// dated before the range; each line then carries the running balance after it,
// and the closing balance equals the last line's running balance. Building a
// statement reads documents only and never writes anything back.
func (s *StatementService) BuildStatement(ctx context.Context, input *BuildStatementInput) (*entity.Statement, error) {
	if input.EndDate.Before(input.StartDate) {
		return nil, apperror.ErrInvalidDateRange
	}

	customer, err := s.customerRepo.GetByID(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}

	entries, err := s.collectEntries(ctx, input)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.date.Equal(b.date) {
			return a.date.Before(b.date)
		}
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		return a.documentNo < b.documentNo
	})

	// endOfRange is exclusive: transactions on the end date itself belong to
	// the statement
	endOfRange := input.EndDate.AddDate(0, 0, 1)

	var opening int64
	lines := make([]entity.StatementLine, 0, len(entries))
	running := int64(0)

	for _, e := range entries {
		if e.date.Before(input.StartDate) {
			opening += e.debit - e.credit
			continue
		}
		if !e.date.Before(endOfRange) {
			continue
		}
		lines = append(lines, entity.StatementLine{
			Date:        e.date,
			Type:        e.docType,
			DocumentNo:  e.documentNo,
			Debit:       float64(e.debit) / 100,
			Credit:      float64(e.credit) / 100,
			DebitCents:  e.debit,
			CreditCents: e.credit,
		})
	}

	running = opening
	for i := range lines {
		running += lines[i].DebitCents - lines[i].CreditCents
		lines[i].RunningBalanceCents = running
		lines[i].RunningBalance = float64(running) / 100
	}

	return &entity.Statement{
		CustomerID:          input.CustomerID,
		CustomerName:        customer.Name,
		StartDate:           input.StartDate,
		EndDate:             input.EndDate,
		OpeningBalance:      float64(opening) / 100,
		ClosingBalance:      float64(running) / 100,
		OpeningBalanceCents: opening,
		ClosingBalanceCents: running,
		Lines:               lines,
	}, nil
}

func (s *StatementService) collectEntries(ctx context.Context, input *BuildStatementInput) ([]ledgerEntry, error) {
	invoices, err := s.invoiceRepo.GetByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.GetByCustomer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}

	entries := make([]ledgerEntry, 0, len(invoices)+len(payments))

	for _, inv := range invoices {
		// Drafts were never issued and void invoices no longer bind the
		// customer; neither belongs on a statement
		if inv.Status == enum.InvoiceStatusDraft || inv.Status == enum.InvoiceStatusVoid {
			continue
		}
		entries = append(entries, ledgerEntry{
			date:       inv.IssueDate,
			createdAt:  inv.CreatedAt,
			docType:    entity.TransactionTypeInvoice,
			documentNo: inv.InvoiceNo,
			debit:      inv.Total,
		})
	}

	// One credit line per (payment, invoice) pair, crediting only the amount
	// applied to that invoice. The unapplied remainder stays on the payment as
	// credit and never reduces the ledger balance.
	for _, p := range payments {
		if len(p.Allocations) == 0 {
			entries = append(entries, ledgerEntry{
				date:       p.PaymentDate,
				createdAt:  p.CreatedAt,
				docType:    entity.TransactionTypePayment,
				documentNo: p.ReceiptNo,
				credit:     p.Amount - p.UnappliedAmount,
			})
			continue
		}
		for _, alloc := range p.Allocations {
			entries = append(entries, ledgerEntry{
				date:       p.PaymentDate,
				createdAt:  p.CreatedAt,
				docType:    entity.TransactionTypePayment,
				documentNo: p.ReceiptNo,
				credit:     alloc.AmountApplied,
			})
		}
	}

	if input.IncludeOrders {
		orders, err := s.orderRepo.GetByCustomer(ctx, input.CustomerID)
		if err != nil {
			return nil, err
		}
		invoicedOrders := make(map[uuid.UUID]bool)
		for _, inv := range invoices {
			if inv.OrderID != nil {
				invoicedOrders[*inv.OrderID] = true
			}
		}
		for _, o := range orders {
			if o.OrderStatus == enum.OrderStatusCancel || invoicedOrders[o.ID] {
				continue
			}
			entries = append(entries, ledgerEntry{
				date:       o.OrderDate,
				createdAt:  o.CreatedAt,
				docType:    entity.TransactionTypeOrder,
				documentNo: o.OrderNo,
				debit:      o.Total,
			})
		}
	}

	return entries, nil
}
