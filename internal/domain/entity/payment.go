package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Payment represents a customer payment, recorded once and split across one or
// more invoices by the allocation engine. The sum of the allocation amounts
// never exceeds Amount; any remainder is kept in UnappliedAmount as a customer
// credit rather than being dropped.
type Payment struct {
	ID              uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	TenantID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID          uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"customer_id"`
	ReceiptNo       string             `gorm:"size:100;unique;not null" json:"receipt_no"`
	PaymentDate     time.Time          `gorm:"type:date;not null" json:"payment_date"`
	Method          enum.PaymentMethod `gorm:"default:0" json:"method"`
	Amount          int64              `gorm:"not null" json:"-"`  // Stored in cents, excluded from JSON
	UnappliedAmount int64              `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Notes           *string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	Tenant      Tenant              `gorm:"foreignKey:TenantID" json:"-"`
	User        User                `gorm:"foreignKey:UserID" json:"-"`
	Customer    *Customer           `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Allocations []PaymentAllocation `gorm:"foreignKey:PaymentID" json:"allocations,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Payment) MarshalJSON() ([]byte, error) {
	type Alias Payment
	return json.Marshal(&struct {
		Alias
		Amount          float64 `json:"amount"`
		UnappliedAmount float64 `json:"unapplied_amount"`
	}{
		Alias:           Alias(p),
		Amount:          float64(p.Amount) / 100,
		UnappliedAmount: float64(p.UnappliedAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// AppliedAmount returns the portion of the payment applied to invoices.
func (p *Payment) AppliedAmount() int64 {
	return p.Amount - p.UnappliedAmount
}

// PaymentAllocation records how much of a payment was applied to a specific
// invoice. Rows are immutable once written; a reversal is a new document, not
// an edit.
type PaymentAllocation struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PaymentID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"payment_id"`
	InvoiceID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"invoice_id"`
	InvoiceNo     string         `gorm:"size:100;not null" json:"invoice_no"`
	AmountApplied int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (pa PaymentAllocation) MarshalJSON() ([]byte, error) {
	type Alias PaymentAllocation
	return json.Marshal(&struct {
		Alias
		AmountApplied float64 `json:"amount_applied"`
	}{
		Alias:         Alias(pa),
		AmountApplied: float64(pa.AmountApplied) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new allocation
func (pa *PaymentAllocation) BeforeCreate(tx *gorm.DB) error {
	if pa.ID == uuid.Nil {
		pa.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentAllocation model
func (PaymentAllocation) TableName() string {
	return "payment_allocations"
}
