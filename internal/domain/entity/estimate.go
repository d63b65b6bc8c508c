package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Estimate represents a price estimate for a customer
type Estimate struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TenantID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID     *uuid.UUID          `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	Date           time.Time           `gorm:"type:date;not null" json:"date"`
	Reference      string              `gorm:"size:100;unique;not null" json:"reference"`
	CustomerName   string              `gorm:"size:255" json:"customer_name"`
	TaxPercentage  float64             `gorm:"type:decimal(5,2);default:0" json:"tax_percentage"`
	TaxAmount      int64               `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	DiscountAmount int64               `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	ShippingAmount int64               `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	TotalAmount    int64               `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Status         enum.EstimateStatus `gorm:"default:0" json:"status"`
	Note           *string             `gorm:"type:text" json:"note,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	Tenant   Tenant           `gorm:"foreignKey:TenantID" json:"-"`
	User     User             `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Details  []EstimateDetail `gorm:"foreignKey:EstimateID" json:"details,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (e Estimate) MarshalJSON() ([]byte, error) {
	type Alias Estimate
	return json.Marshal(&struct {
		Alias
		TaxAmount      float64 `json:"tax_amount"`
		DiscountAmount float64 `json:"discount_amount"`
		ShippingAmount float64 `json:"shipping_amount"`
		TotalAmount    float64 `json:"total_amount"`
	}{
		Alias:          Alias(e),
		TaxAmount:      float64(e.TaxAmount) / 100,
		DiscountAmount: float64(e.DiscountAmount) / 100,
		ShippingAmount: float64(e.ShippingAmount) / 100,
		TotalAmount:    float64(e.TotalAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new estimate
func (e *Estimate) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Estimate model
func (Estimate) TableName() string {
	return "estimates"
}

// EstimateDetail represents a line item in an estimate
type EstimateDetail struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	EstimateID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"estimate_id"`
	ProductID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string         `gorm:"size:255" json:"product_name"`
	ProductCode string         `gorm:"size:100" json:"product_code"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	UnitPrice   int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	SubTotal    int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Estimate Estimate `gorm:"foreignKey:EstimateID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (ed EstimateDetail) MarshalJSON() ([]byte, error) {
	type Alias EstimateDetail
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		SubTotal  float64 `json:"sub_total"`
	}{
		Alias:     Alias(ed),
		UnitPrice: float64(ed.UnitPrice) / 100,
		SubTotal:  float64(ed.SubTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new estimate detail
func (ed *EstimateDetail) BeforeCreate(tx *gorm.DB) error {
	if ed.ID == uuid.Nil {
		ed.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EstimateDetail model
func (EstimateDetail) TableName() string {
	return "estimate_details"
}
