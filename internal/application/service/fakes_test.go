package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/domain/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// In-memory fakes backing the service tests. The invoice store is shared with
// the payment fake so CommitAllocation can enforce the same conditioned-update
// semantics as the real transaction.

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*entity.Invoice
}

func newFakeInvoiceRepo(invoices ...*entity.Invoice) *fakeInvoiceRepo {
	r := &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*entity.Invoice)}
	for _, inv := range invoices {
		r.add(inv)
	}
	return r
}

func (r *fakeInvoiceRepo) add(inv *entity.Invoice) {
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.invoices[inv.ID] = inv
}

func (r *fakeInvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	r.add(invoice)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeInvoiceRepo) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	for _, inv := range r.invoices {
		if inv.InvoiceNo == invoiceNo {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeInvoiceRepo) Update(ctx context.Context, invoice *entity.Invoice) error {
	cp := *invoice
	r.invoices[invoice.ID] = &cp
	return nil
}

func (r *fakeInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	if inv, ok := r.invoices[id]; ok {
		inv.Status = status
	}
	return nil
}

func (r *fakeInvoiceRepo) List(ctx context.Context, userID uuid.UUID, params *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	out := make([]entity.Invoice, 0, len(r.invoices))
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *fakeInvoiceRepo) GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) GetOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID && inv.Status == enum.InvoiceStatusOpen && inv.BalanceDue > 0 {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeInvoiceRepo) GetTotalOutstanding(ctx context.Context) (int64, error) {
	var total int64
	for _, inv := range r.invoices {
		if inv.Status == enum.InvoiceStatusOpen {
			total += inv.BalanceDue
		}
	}
	return total, nil
}

func (r *fakeInvoiceRepo) GetNextInvoiceNumber(ctx context.Context) (int, error) {
	return len(r.invoices) + 1, nil
}

type fakePaymentRepo struct {
	invoices *fakeInvoiceRepo
	payments map[uuid.UUID]*entity.Payment

	// forcedConflicts makes the next n commits fail with an allocation
	// conflict before touching the store; commitErr fails every commit with
	// the given error instead
	forcedConflicts int
	commitErr       error
	commits         int
}

func newFakePaymentRepo(invoices *fakeInvoiceRepo) *fakePaymentRepo {
	return &fakePaymentRepo{
		invoices: invoices,
		payments: make(map[uuid.UUID]*entity.Payment),
	}
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePaymentRepo) GetByReceiptNo(ctx context.Context, receiptNo string) (*entity.Payment, error) {
	for _, p := range r.payments {
		if p.ReceiptNo == receiptNo {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) GetWithAllocations(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *fakePaymentRepo) List(ctx context.Context, userID uuid.UUID, params *repository.PaymentFilterParams) ([]entity.Payment, int64, error) {
	out := make([]entity.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakePaymentRepo) GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Payment, error) {
	var out []entity.Payment
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) GetNextReceiptNumber(ctx context.Context) (int, error) {
	return len(r.payments) + 1, nil
}

func (r *fakePaymentRepo) CommitAllocation(ctx context.Context, payment *entity.Payment, allocations []entity.PaymentAllocation, updates []repository.InvoiceUpdate) error {
	r.commits++
	if r.forcedConflicts > 0 {
		r.forcedConflicts--
		return apperror.ErrAllocationConflict
	}
	if r.commitErr != nil {
		return r.commitErr
	}

	// Conditioned updates: every invoice must still hold the amount_paid the
	// allocation was computed from, or nothing is applied
	for _, u := range updates {
		stored, ok := r.invoices.invoices[u.InvoiceID]
		if !ok || stored.AmountPaid != u.PriorAmountPaid {
			return apperror.ErrAllocationConflict
		}
	}
	for _, u := range updates {
		stored := r.invoices.invoices[u.InvoiceID]
		stored.AmountPaid = u.AmountPaid
		stored.BalanceDue = u.BalanceDue
		stored.Status = u.Status
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	for i := range allocations {
		allocations[i].PaymentID = payment.ID
	}
	cp := *payment
	cp.Allocations = allocations
	r.payments[payment.ID] = &cp
	return nil
}

type fakeCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
	for _, c := range customers {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.Email != nil && *c.Email == email {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, customer *entity.Customer) error {
	r.customers[customer.ID] = customer
	return nil
}

func (r *fakeCustomerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, skipUserFilter bool) ([]entity.Customer, int64, error) {
	out := make([]entity.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *fakeCustomerRepo) ListWithCursor(ctx context.Context, userID uuid.UUID, params *pagination.CursorParams, search string, skipUserFilter bool) ([]entity.Customer, error) {
	out := make([]entity.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, nil
}

type fakeTenantRepo struct {
	tenant *entity.Tenant
}

func (r *fakeTenantRepo) Create(ctx context.Context, tenant *entity.Tenant) error { return nil }

func (r *fakeTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Tenant, error) {
	if r.tenant != nil && r.tenant.ID == id {
		return r.tenant, nil
	}
	return nil, nil
}

func (r *fakeTenantRepo) GetBySlug(ctx context.Context, slug string) (*entity.Tenant, error) {
	return nil, nil
}

func (r *fakeTenantRepo) Update(ctx context.Context, tenant *entity.Tenant) error { return nil }

func (r *fakeTenantRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeTenantRepo) GetUserTenants(ctx context.Context, userID uuid.UUID) ([]entity.Tenant, error) {
	return nil, nil
}

func (r *fakeTenantRepo) AddMember(ctx context.Context, membership *entity.TenantMembership) error {
	return nil
}

func (r *fakeTenantRepo) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	return nil
}

func (r *fakeTenantRepo) GetMembers(ctx context.Context, tenantID uuid.UUID) ([]entity.TenantMembership, error) {
	return nil, nil
}

func (r *fakeTenantRepo) IsMember(ctx context.Context, tenantID, userID uuid.UUID) (bool, error) {
	return false, nil
}

func (r *fakeTenantRepo) GetMembership(ctx context.Context, tenantID, userID uuid.UUID) (*entity.TenantMembership, error) {
	return nil, nil
}

func (r *fakeTenantRepo) UpdateMemberRole(ctx context.Context, tenantID, userID uuid.UUID, role string) error {
	return nil
}

func (r *fakeTenantRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	return false, nil
}

func (r *fakeTenantRepo) ListAll(ctx context.Context) ([]entity.Tenant, error) { return nil, nil }

func (r *fakeTenantRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type fakeOrderRepo struct {
	orders []entity.Order
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *entity.Order) error { return nil }

func (r *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	for i := range r.orders {
		if r.orders[i].ID == id {
			return &r.orders[i], nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) GetByOrderNo(ctx context.Context, orderNo string) (*entity.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *entity.Order) error { return nil }

func (r *fakeOrderRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeOrderRepo) List(ctx context.Context, userID uuid.UUID, params *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	return r.orders, int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) ListWithCursor(ctx context.Context, userID uuid.UUID, params *repository.OrderCursorFilterParams) ([]entity.Order, error) {
	return r.orders, nil
}

func (r *fakeOrderRepo) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error {
	return nil
}

func (r *fakeOrderRepo) GetByCustomer(ctx context.Context, customerID uuid.UUID) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range r.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOrderRepo) GetNextOrderNumber(ctx context.Context) (int, error) {
	return len(r.orders) + 1, nil
}

type fakeProductRepo struct {
	products map[uuid.UUID]*entity.Product
	batches  int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
}

func (r *fakeProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) CreateBatch(ctx context.Context, products []entity.Product) error {
	r.batches++
	for i := range products {
		cp := products[i]
		if cp.ID == uuid.Nil {
			cp.ID = uuid.New()
		}
		r.products[cp.ID] = &cp
	}
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProductRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetBySlug(ctx context.Context, slug string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *entity.Product) error {
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(ctx context.Context, userID uuid.UUID, params *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListWithCursor(ctx context.Context, userID uuid.UUID, params *repository.ProductCursorFilterParams) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) GetLowStock(ctx context.Context, userID uuid.UUID) ([]entity.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	if p, ok := r.products[id]; ok {
		p.Quantity = quantity
	}
	return nil
}

func (r *fakeProductRepo) UpdateQuantityBatch(ctx context.Context, updates map[uuid.UUID]int) error {
	for id, qty := range updates {
		if p, ok := r.products[id]; ok {
			p.Quantity = qty
		}
	}
	return nil
}

func (r *fakeProductRepo) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	p, ok := r.products[id]
	if !ok || p.Quantity < amount {
		return false, nil
	}
	p.Quantity -= amount
	return true, nil
}

func (r *fakeProductRepo) AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	var failed []uuid.UUID
	for id, amount := range decrements {
		if p, ok := r.products[id]; !ok || p.Quantity < amount {
			failed = append(failed, id)
		}
	}
	if len(failed) > 0 {
		return failed, nil
	}
	for id, amount := range decrements {
		r.products[id].Quantity -= amount
	}
	return nil, nil
}

func (r *fakeProductRepo) AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error {
	for id, amount := range increments {
		if p, ok := r.products[id]; ok {
			p.Quantity += amount
		}
	}
	return nil
}

type fakeCategoryRepo struct {
	categories []entity.Category
}

func (r *fakeCategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	r.categories = append(r.categories, *category)
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	for i := range r.categories {
		if r.categories[i].ID == id {
			return &r.categories[i], nil
		}
	}
	return nil, nil
}

func (r *fakeCategoryRepo) GetBySlug(ctx context.Context, slug string) (*entity.Category, error) {
	return nil, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, category *entity.Category) error { return nil }

func (r *fakeCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeCategoryRepo) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, skipUserFilter bool) ([]entity.Category, int64, error) {
	return r.categories, int64(len(r.categories)), nil
}

type fakeUnitRepo struct {
	units []entity.Unit
}

func (r *fakeUnitRepo) Create(ctx context.Context, unit *entity.Unit) error {
	r.units = append(r.units, *unit)
	return nil
}

func (r *fakeUnitRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Unit, error) {
	for i := range r.units {
		if r.units[i].ID == id {
			return &r.units[i], nil
		}
	}
	return nil, nil
}

func (r *fakeUnitRepo) GetBySlug(ctx context.Context, slug string) (*entity.Unit, error) {
	return nil, nil
}

func (r *fakeUnitRepo) Update(ctx context.Context, unit *entity.Unit) error { return nil }

func (r *fakeUnitRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeUnitRepo) List(ctx context.Context, userID uuid.UUID, params *pagination.PaginationParams, search string, skipUserFilter bool) ([]entity.Unit, int64, error) {
	return r.units, int64(len(r.units)), nil
}

// day builds a UTC date for test fixtures.
func day(year int, month time.Month, dayOfMonth int) time.Time {
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}
