package entity

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType identifies the kind of document behind a statement line.
type TransactionType string

const (
	TransactionTypeInvoice TransactionType = "invoice"
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeOrder   TransactionType = "order"
)

// StatementLine is one row of a customer statement: a charge (debit) or a
// payment application (credit) with the running balance after this line.
type StatementLine struct {
	Date           time.Time       `json:"date"`
	Type           TransactionType `json:"type"`
	DocumentNo     string          `json:"document_no"`
	Debit          float64         `json:"debit"`
	Credit         float64         `json:"credit"`
	RunningBalance float64         `json:"running_balance"`

	// Cents values used while building; the float fields above are what the
	// API and templates consume.
	DebitCents          int64 `json:"-"`
	CreditCents         int64 `json:"-"`
	RunningBalanceCents int64 `json:"-"`
}

// Statement is a point-in-time customer ledger for a date range. It is NOT a
// database entity: it is derived from invoices, payments and orders at report
// time and never written back.
type Statement struct {
	CustomerID     uuid.UUID       `json:"customer_id"`
	CustomerName   string          `json:"customer_name"`
	StartDate      time.Time       `json:"start_date"`
	EndDate        time.Time       `json:"end_date"`
	OpeningBalance float64         `json:"opening_balance"`
	ClosingBalance float64         `json:"closing_balance"`
	Lines          []StatementLine `json:"lines"`

	OpeningBalanceCents int64 `json:"-"`
	ClosingBalanceCents int64 `json:"-"`
}
