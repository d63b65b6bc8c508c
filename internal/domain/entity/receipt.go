package entity

// Letterhead holds the business header printed at the top of receipts and
// statements (name/address/logo come from tenant settings).
type Letterhead struct {
	BusinessName string `json:"business_name"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
	LogoURL      string `json:"logo_url,omitempty"`
}

// ReceiptAllocationLine is one invoice touched by a payment, in the order the
// allocation engine processed it.
type ReceiptAllocationLine struct {
	InvoiceNo     string  `json:"invoice_no"`
	AmountApplied float64 `json:"amount_applied"`
	BalanceAfter  float64 `json:"balance_after"`
}

// PaymentReceipt is a value object representing a printable payment receipt.
// It is NOT a database entity: it is composed from the payment and its
// allocations at print time and is immutable once built.
type PaymentReceipt struct {
	Header          Letterhead              `json:"header"`
	ReceiptNo       string                  `json:"receipt_no"`
	Date            string                  `json:"date"`
	Customer        string                  `json:"customer"`
	Method          string                  `json:"method"`
	Notes           string                  `json:"notes,omitempty"`
	Lines           []ReceiptAllocationLine `json:"lines"`
	Amount          float64                 `json:"amount"`
	AmountApplied   float64                 `json:"amount_applied"`
	UnappliedCredit float64                 `json:"unapplied_credit"`
}

// OrderReceipt is a value object representing a printable point-of-sale
// receipt composed from order data at print time.
type OrderReceipt struct {
	Header    Letterhead         `json:"header"`
	OrderNo   string             `json:"order_no"`
	Date      string             `json:"date"`
	Cashier   string             `json:"cashier,omitempty"`
	Customer  string             `json:"customer,omitempty"`
	Items     []OrderReceiptItem `json:"items"`
	SubTotal  float64            `json:"sub_total"`
	TaxAmount float64            `json:"tax_amount"`
	Total     float64            `json:"total"`
}

// OrderReceiptItem represents a single line item on an order receipt.
type OrderReceiptItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}
