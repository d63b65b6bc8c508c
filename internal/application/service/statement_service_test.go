package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statementFixture struct {
	svc      *StatementService
	invoices *fakeInvoiceRepo
	payments *fakePaymentRepo
	orders   *fakeOrderRepo
	customer *entity.Customer
	ctx      context.Context
}

func newStatementFixture() *statementFixture {
	customer := &entity.Customer{ID: uuid.New(), Name: "Otieno & Sons"}
	invoiceRepo := newFakeInvoiceRepo()
	paymentRepo := newFakePaymentRepo(invoiceRepo)
	orderRepo := &fakeOrderRepo{}
	svc := NewStatementService(invoiceRepo, paymentRepo, orderRepo, newFakeCustomerRepo(customer))

	return &statementFixture{
		svc:      svc,
		invoices: invoiceRepo,
		payments: paymentRepo,
		orders:   orderRepo,
		customer: customer,
		ctx:      context.Background(),
	}
}

func (f *statementFixture) addInvoice(no string, totalCents int64, issued time.Time, status enum.InvoiceStatus) *entity.Invoice {
	inv := &entity.Invoice{
		ID:         uuid.New(),
		CustomerID: f.customer.ID,
		InvoiceNo:  no,
		IssueDate:  issued,
		DueDate:    issued.AddDate(0, 0, 30),
		Status:     status,
		Total:      totalCents,
		BalanceDue: totalCents,
		CreatedAt:  issued,
	}
	f.invoices.add(inv)
	return inv
}

func (f *statementFixture) addPayment(receiptNo string, amountCents int64, paid time.Time) {
	id := uuid.New()
	f.payments.payments[id] = &entity.Payment{
		ID:          id,
		CustomerID:  f.customer.ID,
		ReceiptNo:   receiptNo,
		PaymentDate: paid,
		Amount:      amountCents,
		CreatedAt:   paid.Add(time.Hour),
	}
}

func TestBuildStatementOpeningAndClosingBalances(t *testing.T) {
	f := newStatementFixture()

	// Before the range: a carried-forward balance of 500
	f.addInvoice("INV-000001", 50000, day(2025, time.November, 10), enum.InvoiceStatusOpen)

	// Inside the range: a 200 charge and a 150 payment
	f.addInvoice("INV-000002", 20000, day(2026, time.January, 5), enum.InvoiceStatusOpen)
	f.addPayment("RCT-000001", 15000, day(2026, time.January, 12))

	stmt, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2026, time.January, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.NoError(t, err)

	assert.Equal(t, "Otieno & Sons", stmt.CustomerName)
	assert.Equal(t, int64(50000), stmt.OpeningBalanceCents)
	assert.Equal(t, int64(55000), stmt.ClosingBalanceCents)
	assert.InDelta(t, 500.00, stmt.OpeningBalance, 0.001)
	assert.InDelta(t, 550.00, stmt.ClosingBalance, 0.001)

	require.Len(t, stmt.Lines, 2)
	assert.Equal(t, entity.TransactionTypeInvoice, stmt.Lines[0].Type)
	assert.Equal(t, "INV-000002", stmt.Lines[0].DocumentNo)
	assert.Equal(t, int64(70000), stmt.Lines[0].RunningBalanceCents)
	assert.Equal(t, entity.TransactionTypePayment, stmt.Lines[1].Type)
	assert.Equal(t, "RCT-000001", stmt.Lines[1].DocumentNo)
	assert.Equal(t, int64(55000), stmt.Lines[1].RunningBalanceCents)
}

func TestBuildStatementRejectsInvertedRange(t *testing.T) {
	f := newStatementFixture()

	_, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2026, time.February, 1),
		EndDate:    day(2026, time.January, 1),
	})
	assert.ErrorIs(t, err, apperror.ErrInvalidDateRange)
}

func TestBuildStatementUnknownCustomer(t *testing.T) {
	f := newStatementFixture()

	_, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: uuid.New(),
		StartDate:  day(2026, time.January, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestBuildStatementExcludesDraftAndVoidInvoices(t *testing.T) {
	f := newStatementFixture()
	f.addInvoice("INV-000001", 10000, day(2026, time.January, 5), enum.InvoiceStatusOpen)
	f.addInvoice("INV-000002", 20000, day(2026, time.January, 6), enum.InvoiceStatusDraft)
	f.addInvoice("INV-000003", 30000, day(2026, time.January, 7), enum.InvoiceStatusVoid)

	stmt, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2026, time.January, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.NoError(t, err)

	require.Len(t, stmt.Lines, 1)
	assert.Equal(t, "INV-000001", stmt.Lines[0].DocumentNo)
	assert.Equal(t, int64(10000), stmt.ClosingBalanceCents)
}

func TestBuildStatementEndDateIsInclusive(t *testing.T) {
	f := newStatementFixture()
	f.addInvoice("INV-000001", 10000, day(2026, time.January, 31), enum.InvoiceStatusOpen)
	f.addInvoice("INV-000002", 20000, day(2026, time.February, 1), enum.InvoiceStatusOpen)

	stmt, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2026, time.January, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.NoError(t, err)

	require.Len(t, stmt.Lines, 1)
	assert.Equal(t, "INV-000001", stmt.Lines[0].DocumentNo)
}

func TestBuildStatementSameDayOrderingIsStable(t *testing.T) {
	f := newStatementFixture()
	sameDay := day(2026, time.January, 10)

	// Payment created an hour after the invoice on the same day must come
	// second so the running balance never dips below the truth
	f.addInvoice("INV-000001", 10000, sameDay, enum.InvoiceStatusOpen)
	f.addPayment("RCT-000001", 10000, sameDay)

	stmt, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2026, time.January, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.NoError(t, err)

	require.Len(t, stmt.Lines, 2)
	assert.Equal(t, entity.TransactionTypeInvoice, stmt.Lines[0].Type)
	assert.Equal(t, int64(10000), stmt.Lines[0].RunningBalanceCents)
	assert.Equal(t, entity.TransactionTypePayment, stmt.Lines[1].Type)
	assert.Equal(t, int64(0), stmt.Lines[1].RunningBalanceCents)
}

func TestBuildStatementIncludeOrders(t *testing.T) {
	f := newStatementFixture()

	invoiced := &entity.Order{
		ID:          uuid.New(),
		CustomerID:  &f.customer.ID,
		OrderNo:     "ORD-00001",
		OrderDate:   day(2026, time.January, 5),
		OrderStatus: enum.OrderStatusComplete,
		Total:       10000,
	}
	cancelled := &entity.Order{
		ID:          uuid.New(),
		CustomerID:  &f.customer.ID,
		OrderNo:     "ORD-00002",
		OrderDate:   day(2026, time.January, 6),
		OrderStatus: enum.OrderStatusCancel,
		Total:       5000,
	}
	uninvoiced := &entity.Order{
		ID:          uuid.New(),
		CustomerID:  &f.customer.ID,
		OrderNo:     "ORD-00003",
		OrderDate:   day(2026, time.January, 7),
		OrderStatus: enum.OrderStatusComplete,
		Total:       7500,
	}
	f.orders.orders = []entity.Order{*invoiced, *cancelled, *uninvoiced}

	// The first order already has an invoice carrying its charge
	inv := f.addInvoice("INV-000001", 10000, day(2026, time.January, 5), enum.InvoiceStatusOpen)
	inv.OrderID = &invoiced.ID

	stmt, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID:    f.customer.ID,
		StartDate:     day(2026, time.January, 1),
		EndDate:       day(2026, time.January, 31),
		IncludeOrders: true,
	})
	require.NoError(t, err)

	require.Len(t, stmt.Lines, 2)
	assert.Equal(t, "INV-000001", stmt.Lines[0].DocumentNo)
	assert.Equal(t, entity.TransactionTypeOrder, stmt.Lines[1].Type)
	assert.Equal(t, "ORD-00003", stmt.Lines[1].DocumentNo)
	assert.Equal(t, int64(17500), stmt.ClosingBalanceCents)
}

func TestBuildStatementSplitsPaymentAcrossInvoices(t *testing.T) {
	f := newPaymentFixture(
		openInvoice("INV-000001", 10000, day(2026, time.January, 10)),
		openInvoice("INV-000002", 6000, day(2026, time.January, 20)),
	)

	_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		CustomerID:  f.customer.ID,
		Amount:      130.00,
		PaymentDate: day(2026, time.January, 25),
	})
	require.NoError(t, err)

	stmtSvc := NewStatementService(f.invoices, f.payments, &fakeOrderRepo{}, newFakeCustomerRepo(f.customer))
	stmt, err := stmtSvc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2025, time.December, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.NoError(t, err)

	// A payment split across two invoices shows up once per invoice it touched
	require.Len(t, stmt.Lines, 4)
	assert.Equal(t, entity.TransactionTypePayment, stmt.Lines[2].Type)
	assert.Equal(t, int64(10000), stmt.Lines[2].CreditCents)
	assert.Equal(t, entity.TransactionTypePayment, stmt.Lines[3].Type)
	assert.Equal(t, int64(3000), stmt.Lines[3].CreditCents)
	assert.Equal(t, stmt.Lines[2].DocumentNo, stmt.Lines[3].DocumentNo)
	assert.Equal(t, int64(3000), stmt.ClosingBalanceCents)
}

func TestBuildStatementOverpaymentCreditsOnlyAppliedAmount(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 10)))

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		CustomerID:  f.customer.ID,
		Amount:      200.00,
		PaymentDate: day(2026, time.January, 15),
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), payment.UnappliedAmount)

	stmtSvc := NewStatementService(f.invoices, f.payments, &fakeOrderRepo{}, newFakeCustomerRepo(f.customer))
	stmt, err := stmtSvc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2025, time.December, 1),
		EndDate:    day(2026, time.January, 31),
	})
	require.NoError(t, err)

	// Only the applied portion credits the ledger; the rest stays on the
	// payment as unapplied credit
	require.Len(t, stmt.Lines, 2)
	assert.Equal(t, int64(10000), stmt.Lines[1].CreditCents)
	assert.Equal(t, int64(0), stmt.ClosingBalanceCents)
}

func TestBuildStatementEmptyRangeKeepsOpeningBalance(t *testing.T) {
	f := newStatementFixture()
	f.addInvoice("INV-000001", 25000, day(2025, time.December, 1), enum.InvoiceStatusOpen)

	stmt, err := f.svc.BuildStatement(f.ctx, &BuildStatementInput{
		CustomerID: f.customer.ID,
		StartDate:  day(2026, time.March, 1),
		EndDate:    day(2026, time.March, 31),
	})
	require.NoError(t, err)

	assert.Empty(t, stmt.Lines)
	assert.Equal(t, int64(25000), stmt.OpeningBalanceCents)
	assert.Equal(t, int64(25000), stmt.ClosingBalanceCents)
}
