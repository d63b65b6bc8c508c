package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/entity"
	"github.com/kipronoh/bizpilot-api/internal/domain/repository"
	infraRepo "github.com/kipronoh/bizpilot-api/internal/infrastructure/repository"
	"github.com/kipronoh/bizpilot-api/pkg/apperror"
	"github.com/kipronoh/bizpilot-api/pkg/printer"
)

// PrinterService handles receipt formatting and thermal printing.
type PrinterService struct {
	printer     printer.Printer
	orderRepo   repository.OrderRepository
	tenantRepo  repository.TenantRepository
	printerType string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	orderRepo repository.OrderRepository,
	tenantRepo repository.TenantRepository,
	printerType string,
) *PrinterService {
	return &PrinterService{
		printer:     p,
		orderRepo:   orderRepo,
		tenantRepo:  tenantRepo,
		printerType: printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

func (s *PrinterService) letterhead(ctx context.Context) entity.Letterhead {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return entity.Letterhead{}
	}
	tenant, err := s.tenantRepo.GetByID(ctx, tenantID)
	if err != nil || tenant == nil {
		return entity.Letterhead{}
	}
	return tenant.Letterhead()
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint() (*entity.OrderReceipt, error) {
	receipt := &entity.OrderReceipt{
		Header: entity.Letterhead{
			BusinessName: "PRINTER TEST",
			Address:      "Test Address",
			Phone:        "+254 000 000 000",
		},
		OrderNo: "TEST-001",
		Date:    "Test Date",
		Cashier: "System",
		Items: []entity.OrderReceiptItem{
			{Name: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Name: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		SubTotal:  20.00,
		TaxAmount: 0.00,
		Total:     20.00,
	}

	data := FormatOrderReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}

	return receipt, nil
}

// PrintOrderReceipt fetches an order (with details) and prints its receipt.
func (s *PrinterService) PrintOrderReceipt(ctx context.Context, orderID uuid.UUID) (*entity.OrderReceipt, error) {
	order, err := s.orderRepo.GetWithDetails(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}

	receipt := &entity.OrderReceipt{
		Header:    s.letterhead(ctx),
		OrderNo:   order.OrderNo,
		Date:      order.OrderDate.Format("2006-01-02 15:04"),
		SubTotal:  float64(order.SubTotal) / 100,
		TaxAmount: float64(order.TaxAmount) / 100,
		Total:     float64(order.Total) / 100,
	}

	if order.Customer != nil {
		receipt.Customer = order.Customer.Name
	}

	for _, d := range order.Details {
		item := entity.OrderReceiptItem{
			Quantity:  d.Quantity,
			UnitPrice: float64(d.UnitCost) / 100,
			Total:     float64(d.Total) / 100,
		}
		if d.Product.Name != "" {
			item.Name = d.Product.Name
		} else {
			item.Name = "Product"
		}
		receipt.Items = append(receipt.Items, item)
	}

	data := FormatOrderReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (order %s): %v", orderID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// PrintPaymentReceipt prints a composed payment receipt showing how the
// payment was split across invoices.
func (s *PrinterService) PrintPaymentReceipt(receipt *entity.PaymentReceipt) error {
	data := FormatPaymentReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (receipt %s): %v", receipt.ReceiptNo, err)
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}

func formatHeader(doc *printer.Document, h entity.Letterhead) {
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(h.BusinessName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if h.Address != "" {
		doc.Text(h.Address)
	}
	if h.Phone != "" {
		doc.Text(h.Phone)
	}
	if h.TaxID != "" {
		doc.TextF("Tax ID: %s", h.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')
}

// FormatOrderReceipt converts an OrderReceipt into ESC/POS bytes.
func FormatOrderReceipt(r *entity.OrderReceipt) []byte {
	doc := printer.NewDocument(32) // 58mm paper = 32 chars

	formatHeader(doc, r.Header)

	doc.KeyValue("Order:", r.OrderNo).
		KeyValue("Date:", r.Date)

	if r.Cashier != "" {
		doc.KeyValue("Cashier:", r.Cashier)
	}
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Name, fmt.Sprintf("%.2f", item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %.2f each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	// Totals
	doc.KeyValue("Subtotal:", fmt.Sprintf("%.2f", r.SubTotal))
	if r.TaxAmount > 0 {
		doc.KeyValue("Tax:", fmt.Sprintf("%.2f", r.TaxAmount))
	}
	doc.SetBold(true).
		KeyValue("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		SetBold(false)

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your business!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

// FormatPaymentReceipt converts a PaymentReceipt into ESC/POS bytes.
func FormatPaymentReceipt(r *entity.PaymentReceipt) []byte {
	doc := printer.NewDocument(32)

	formatHeader(doc, r.Header)

	doc.KeyValue("Receipt:", r.ReceiptNo).
		KeyValue("Date:", r.Date)

	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	doc.KeyValue("Method:", r.Method)

	doc.Separator('-')

	// One line per invoice the payment touched
	for _, line := range r.Lines {
		doc.KeyValue(line.InvoiceNo, fmt.Sprintf("%.2f", line.AmountApplied))
		doc.TextF("  balance: %.2f", line.BalanceAfter)
	}

	doc.Separator('-')

	doc.SetBold(true).
		KeyValue("PAID:", fmt.Sprintf("%.2f", r.Amount)).
		SetBold(false)
	doc.KeyValue("Applied:", fmt.Sprintf("%.2f", r.AmountApplied))
	if r.UnappliedCredit > 0 {
		doc.KeyValue("Credit:", fmt.Sprintf("%.2f", r.UnappliedCredit))
	}

	if r.Notes != "" {
		doc.Separator('-')
		doc.Text(r.Notes)
	}

	doc.Separator('-')

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("Thank you for your payment!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
