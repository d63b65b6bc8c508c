package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Invoice represents a customer invoice. All monetary fields are stored in
// cents; amount_paid is only ever mutated by the payment allocation flow and
// balance_due always equals total - amount_paid.
type Invoice struct {
	ID          uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	OrderID     *uuid.UUID         `gorm:"type:uuid;index" json:"order_id,omitempty"`
	InvoiceNo   string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	IssueDate   time.Time          `gorm:"type:date;not null" json:"issue_date"`
	DueDate     time.Time          `gorm:"type:date;not null" json:"due_date"`
	Status      enum.InvoiceStatus `gorm:"default:0" json:"status"`
	SubTotal    int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TaxAmount   int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Total       int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	AmountPaid  int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	BalanceDue  int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Notes       *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	DeletedAt   gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Tenant      Tenant              `gorm:"foreignKey:TenantID" json:"-"`
	User        User                `gorm:"foreignKey:UserID" json:"-"`
	Customer    *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items       []InvoiceItem       `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Allocations []PaymentAllocation `gorm:"foreignKey:InvoiceID" json:"allocations,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i Invoice) MarshalJSON() ([]byte, error) {
	type Alias Invoice
	return json.Marshal(&struct {
		Alias
		SubTotal   float64 `json:"sub_total"`
		TaxAmount  float64 `json:"tax_amount"`
		Total      float64 `json:"total"`
		AmountPaid float64 `json:"amount_paid"`
		BalanceDue float64 `json:"balance_due"`
	}{
		Alias:      Alias(i),
		SubTotal:   float64(i.SubTotal) / 100,
		TaxAmount:  float64(i.TaxAmount) / 100,
		Total:      float64(i.Total) / 100,
		AmountPaid: float64(i.AmountPaid) / 100,
		BalanceDue: float64(i.BalanceDue) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// ApplyAmount records an applied payment amount against this invoice and
// recomputes the derived balance and status. Callers must ensure amount does
// not exceed the current balance due.
func (i *Invoice) ApplyAmount(amount int64) {
	i.AmountPaid += amount
	i.BalanceDue = i.Total - i.AmountPaid
	if i.BalanceDue <= 0 {
		i.BalanceDue = 0
		i.Status = enum.InvoiceStatusPaid
	}
}

// IsOpen reports whether the invoice can still receive payment allocations.
func (i *Invoice) IsOpen() bool {
	return i.Status != enum.InvoiceStatusVoid && i.BalanceDue > 0
}

// GetTotalDecimal returns the total as a decimal
func (i *Invoice) GetTotalDecimal() float64 {
	return float64(i.Total) / 100
}

// GetBalanceDueDecimal returns the balance due as a decimal
func (i *Invoice) GetBalanceDueDecimal() float64 {
	return float64(i.BalanceDue) / 100
}

// InvoiceItem represents a line item on an invoice
type InvoiceItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID   *uuid.UUID     `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Description string         `gorm:"size:255;not null" json:"description"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	UnitPrice   int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	Total       int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Invoice Invoice  `gorm:"foreignKey:InvoiceID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (ii InvoiceItem) MarshalJSON() ([]byte, error) {
	type Alias InvoiceItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		Total     float64 `json:"total"`
	}{
		Alias:     Alias(ii),
		UnitPrice: float64(ii.UnitPrice) / 100,
		Total:     float64(ii.Total) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new invoice item
func (ii *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if ii.ID == uuid.Nil {
		ii.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}
