package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	infraRepo "github.com/kipronoh/bizpilot-api/internal/infrastructure/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	svc      *PaymentService
	invoices *fakeInvoiceRepo
	payments *fakePaymentRepo
	tenant   *entity.Tenant
	customer *entity.Customer
	ctx      context.Context
}

func newPaymentFixture(invoices ...*entity.Invoice) *paymentFixture {
	tenant := &entity.Tenant{
		ID:       uuid.New(),
		Name:     "Acme Hardware",
		Settings: entity.DefaultTenantSettings(),
	}
	customer := &entity.Customer{ID: uuid.New(), TenantID: tenant.ID, Name: "Jane Wanjiku"}
	for _, inv := range invoices {
		inv.TenantID = tenant.ID
		inv.CustomerID = customer.ID
	}

	invoiceRepo := newFakeInvoiceRepo(invoices...)
	paymentRepo := newFakePaymentRepo(invoiceRepo)
	svc := NewPaymentService(paymentRepo, invoiceRepo, newFakeCustomerRepo(customer), &fakeTenantRepo{tenant: tenant}, nil)

	return &paymentFixture{
		svc:      svc,
		invoices: invoiceRepo,
		payments: paymentRepo,
		tenant:   tenant,
		customer: customer,
		ctx:      infraRepo.WithTenant(context.Background(), tenant.ID),
	}
}

func openInvoice(no string, totalCents int64, due time.Time) *entity.Invoice {
	return &entity.Invoice{
		ID:         uuid.New(),
		InvoiceNo:  no,
		IssueDate:  due.AddDate(0, 0, -30),
		DueDate:    due,
		Status:     enum.InvoiceStatusOpen,
		Total:      totalCents,
		BalanceDue: totalCents,
	}
}

func TestAllocatePaymentSplitsAcrossInvoicesOldestDueFirst(t *testing.T) {
	f := newPaymentFixture(
		openInvoice("INV-000002", 6000, day(2026, time.February, 15)),
		openInvoice("INV-000001", 10000, day(2026, time.January, 15)),
	)

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     130.00,
		Method:     enum.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.NotNil(t, payment)

	assert.Equal(t, int64(13000), payment.Amount)
	assert.Equal(t, int64(0), payment.UnappliedAmount)
	require.Len(t, payment.Allocations, 2)

	// The January invoice is due first and absorbs its full balance
	assert.Equal(t, "INV-000001", payment.Allocations[0].InvoiceNo)
	assert.Equal(t, int64(10000), payment.Allocations[0].AmountApplied)
	assert.Equal(t, "INV-000002", payment.Allocations[1].InvoiceNo)
	assert.Equal(t, int64(3000), payment.Allocations[1].AmountApplied)

	first, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-000001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), first.BalanceDue)
	assert.Equal(t, enum.InvoiceStatusPaid, first.Status)

	second, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-000002")
	require.NoError(t, err)
	assert.Equal(t, int64(3000), second.BalanceDue)
	assert.Equal(t, enum.InvoiceStatusOpen, second.Status)
}

func TestAllocatePaymentPartialLeavesInvoiceOpen(t *testing.T) {
	f := newPaymentFixture(
		openInvoice("INV-000001", 10000, day(2026, time.January, 15)),
		openInvoice("INV-000002", 6000, day(2026, time.February, 15)),
	)

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     40.00,
		Method:     enum.PaymentMethodCard,
	})
	require.NoError(t, err)

	require.Len(t, payment.Allocations, 1)
	assert.Equal(t, "INV-000001", payment.Allocations[0].InvoiceNo)
	assert.Equal(t, int64(4000), payment.Allocations[0].AmountApplied)

	first, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-000001")
	require.NoError(t, err)
	assert.Equal(t, int64(4000), first.AmountPaid)
	assert.Equal(t, int64(6000), first.BalanceDue)
	assert.Equal(t, enum.InvoiceStatusOpen, first.Status)

	// The second invoice is untouched
	second, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-000002")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), second.BalanceDue)
}

func TestAllocatePaymentKeepsOverpaymentAsCredit(t *testing.T) {
	f := newPaymentFixture(
		openInvoice("INV-000001", 10000, day(2026, time.January, 15)),
		openInvoice("INV-000002", 6000, day(2026, time.February, 15)),
	)

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     200.00,
		Method:     enum.PaymentMethodCheck,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(20000), payment.Amount)
	assert.Equal(t, int64(4000), payment.UnappliedAmount)
	assert.Equal(t, int64(16000), payment.AppliedAmount())
}

func TestAllocatePaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 15)))

	for _, amount := range []float64{0, -25.00} {
		_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
			UserID:     uuid.New(),
			CustomerID: f.customer.ID,
			Amount:     amount,
		})
		require.Error(t, err)
		appErr, ok := err.(*apperror.AppError)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Code)
	}

	assert.Equal(t, 0, f.payments.commits)
}

func TestAllocatePaymentFailsWithoutOpenInvoices(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     50.00,
	})
	assert.ErrorIs(t, err, apperror.ErrNoOutstandingBalance)
}

func TestAllocatePaymentSkipsVoidAndPaidInvoices(t *testing.T) {
	void := openInvoice("INV-000001", 10000, day(2026, time.January, 15))
	void.Status = enum.InvoiceStatusVoid
	paid := openInvoice("INV-000002", 5000, day(2026, time.January, 20))
	paid.Status = enum.InvoiceStatusPaid
	paid.AmountPaid = 5000
	paid.BalanceDue = 0
	f := newPaymentFixture(void, paid)

	_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     50.00,
	})
	assert.ErrorIs(t, err, apperror.ErrNoOutstandingBalance)
}

func TestAllocatePaymentRetriesAfterConflict(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 15)))
	f.payments.forcedConflicts = 1

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     100.00,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, f.payments.commits)

	inv, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-000001")
	require.NoError(t, err)
	assert.Equal(t, int64(0), inv.BalanceDue)
	assert.Equal(t, int64(10000), payment.AppliedAmount())
}

func TestAllocatePaymentGivesUpAfterRepeatedConflicts(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 15)))
	f.payments.forcedConflicts = allocationMaxAttempts

	_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     100.00,
	})
	assert.ErrorIs(t, err, apperror.ErrAllocationConflict)
	assert.Equal(t, allocationMaxAttempts, f.payments.commits)

	// No writes landed
	inv, err := f.invoices.GetByInvoiceNo(f.ctx, "INV-000001")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), inv.BalanceDue)
}

func TestAllocatePaymentRequiresTenantContext(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 15)))

	_, err := f.svc.AllocatePayment(context.Background(), &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     50.00,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.Code)
}

func TestAllocatePaymentUnknownCustomer(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 15)))

	_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: uuid.New(),
		Amount:     50.00,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.Code)
}

func TestAllocatePaymentReceiptNumberUsesTenantPrefix(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.January, 15)))
	f.tenant.Settings.ReceiptPrefix = "ACME-R"

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:     uuid.New(),
		CustomerID: f.customer.ID,
		Amount:     100.00,
	})
	require.NoError(t, err)
	assert.Equal(t, "ACME-R000001", payment.ReceiptNo)
}

func TestOldestDueFirstTieBreaks(t *testing.T) {
	sameDue := day(2026, time.March, 1)
	invoices := []entity.Invoice{
		{InvoiceNo: "INV-000003", DueDate: sameDue, IssueDate: day(2026, time.February, 10)},
		{InvoiceNo: "INV-000002", DueDate: sameDue, IssueDate: day(2026, time.February, 1)},
		{InvoiceNo: "INV-000001", DueDate: sameDue, IssueDate: day(2026, time.February, 1)},
		{InvoiceNo: "INV-000004", DueDate: day(2026, time.January, 1), IssueDate: day(2026, time.February, 20)},
	}

	OldestDueFirst{}.Sort(invoices)

	got := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		got = append(got, inv.InvoiceNo)
	}
	assert.Equal(t, []string{"INV-000004", "INV-000001", "INV-000002", "INV-000003"}, got)
}

func TestBuildReceiptReportsBalancesAfterAllocation(t *testing.T) {
	f := newPaymentFixture(
		openInvoice("INV-000001", 10000, day(2026, time.January, 15)),
		openInvoice("INV-000002", 6000, day(2026, time.February, 15)),
	)

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		UserID:      uuid.New(),
		CustomerID:  f.customer.ID,
		Amount:      130.00,
		Method:      enum.PaymentMethodCash,
		PaymentDate: day(2026, time.March, 2),
	})
	require.NoError(t, err)

	receipt, err := f.svc.BuildReceipt(f.ctx, payment.ID)
	require.NoError(t, err)

	assert.Equal(t, payment.ReceiptNo, receipt.ReceiptNo)
	assert.Equal(t, "2026-03-02", receipt.Date)
	assert.Equal(t, "Cash", receipt.Method)
	assert.Equal(t, "Acme Hardware", receipt.Header.BusinessName)
	assert.InDelta(t, 130.00, receipt.Amount, 0.001)
	assert.InDelta(t, 130.00, receipt.AmountApplied, 0.001)
	assert.InDelta(t, 0.0, receipt.UnappliedCredit, 0.001)

	require.Len(t, receipt.Lines, 2)
	assert.Equal(t, "INV-000001", receipt.Lines[0].InvoiceNo)
	assert.InDelta(t, 100.00, receipt.Lines[0].AmountApplied, 0.001)
	assert.InDelta(t, 0.0, receipt.Lines[0].BalanceAfter, 0.001)
	assert.Equal(t, "INV-000002", receipt.Lines[1].InvoiceNo)
	assert.InDelta(t, 30.00, receipt.Lines[1].AmountApplied, 0.001)
	assert.InDelta(t, 30.00, receipt.Lines[1].BalanceAfter, 0.001)
}

func TestAllocatePaymentWrapsCommitFailures(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 10000, day(2026, time.March, 1)))
	f.payments.commitErr = errors.New("connection reset by peer")

	_, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		CustomerID: f.customer.ID,
		Amount:     50.00,
	})
	require.Error(t, err)

	var persistErr *apperror.AllocationPersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Equal(t, f.customer.ID, persistErr.CustomerID)
	assert.Equal(t, int64(5000), persistErr.AmountCents)
	require.Len(t, persistErr.InvoiceIDs, 1)
	assert.Contains(t, err.Error(), "connection reset by peer")

	// Persistence failures are not conflicts and must not be retried
	assert.Equal(t, 1, f.payments.commits)
}

func TestAllocatePaymentRoundsAmountToCents(t *testing.T) {
	f := newPaymentFixture(openInvoice("INV-000001", 20000, day(2026, time.March, 1)))

	payment, err := f.svc.AllocatePayment(f.ctx, &AllocatePaymentInput{
		CustomerID: f.customer.ID,
		Amount:     130.10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(13010), payment.Amount)
}
