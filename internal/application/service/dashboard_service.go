package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/domain/repository"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// DashboardService provides dashboard statistics
type DashboardService struct {
	orderRepo     repository.OrderRepository
	invoiceRepo   repository.InvoiceRepository
	productRepo   repository.ProductRepository
	customerRepo  repository.CustomerRepository
	analyticsRepo repository.AnalyticsRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	analyticsRepo repository.AnalyticsRepository,
) *DashboardService {
	return &DashboardService{
		orderRepo:     orderRepo,
		invoiceRepo:   invoiceRepo,
		productRepo:   productRepo,
		customerRepo:  customerRepo,
		analyticsRepo: analyticsRepo,
	}
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TotalCustomers    int64             `json:"total_customers"`
	TotalProducts     int64             `json:"total_products"`
	TotalOrders       int64             `json:"total_orders"`
	TotalInvoices     int64             `json:"total_invoices"`
	OpenInvoices      int64             `json:"open_invoices"`
	TotalReceivables  float64           `json:"total_receivables"`
	PaymentsCollected float64           `json:"payments_collected_30d"`
	TotalRevenue      float64           `json:"total_revenue"`
	MonthlyRevenue    float64           `json:"monthly_revenue"`
	LowStockCount     int64             `json:"low_stock_count"`
	PendingOrders     int64             `json:"pending_orders"`
	DailySalesData    []DailySalesPoint `json:"daily_sales_data"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	// Get counts
	paginationParams := pagination.DefaultPagination()
	paginationParams.PerPage = 1 // We only need the count

	// Customers - show all customers for admin dashboard (skipUserFilter = true)
	_, customerCount, err := s.customerRepo.List(ctx, userID, paginationParams, "", true)
	if err != nil {
		return nil, err
	}
	stats.TotalCustomers = customerCount

	// Products - show all products in dashboard (skip user filter for overview)
	productParams := &repository.ProductFilterParams{
		Pagination:     paginationParams,
		SkipUserFilter: true,
	}
	_, productCount, err := s.productRepo.List(ctx, userID, productParams)
	if err != nil {
		return nil, err
	}
	stats.TotalProducts = productCount

	// Low stock products - show all low stock items
	lowStockParams := &repository.ProductFilterParams{
		Pagination:     &pagination.PaginationParams{Page: 1, PerPage: 1000},
		LowStock:       true,
		SkipUserFilter: true,
	}
	lowStockProducts, _, err := s.productRepo.List(ctx, userID, lowStockParams)
	if err != nil {
		return nil, err
	}
	stats.LowStockCount = int64(len(lowStockProducts))

	// Orders - show all orders for admin dashboard
	orderParams := &repository.OrderFilterParams{
		Pagination:     paginationParams,
		SkipUserFilter: true,
	}
	orders, orderCount, err := s.orderRepo.List(ctx, userID, orderParams)
	if err != nil {
		return nil, err
	}
	stats.TotalOrders = orderCount

	// Pending orders - show all pending orders
	pendingStatus := enum.OrderStatusPending
	pendingOrderParams := &repository.OrderFilterParams{
		Pagination:     paginationParams,
		Status:         &pendingStatus,
		SkipUserFilter: true,
	}
	_, pendingOrderCount, err := s.orderRepo.List(ctx, userID, pendingOrderParams)
	if err != nil {
		return nil, err
	}
	stats.PendingOrders = pendingOrderCount

	// Invoices and receivables
	invoiceParams := &repository.InvoiceFilterParams{
		Pagination:     paginationParams,
		SkipUserFilter: true,
	}
	_, invoiceCount, err := s.invoiceRepo.List(ctx, userID, invoiceParams)
	if err != nil {
		return nil, err
	}
	stats.TotalInvoices = invoiceCount

	openStatus := enum.InvoiceStatusOpen
	openInvoiceParams := &repository.InvoiceFilterParams{
		Pagination:     paginationParams,
		Status:         &openStatus,
		SkipUserFilter: true,
	}
	_, openInvoiceCount, err := s.invoiceRepo.List(ctx, userID, openInvoiceParams)
	if err != nil {
		return nil, err
	}
	stats.OpenInvoices = openInvoiceCount

	receivables, err := s.invoiceRepo.GetTotalOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalReceivables = float64(receivables) / 100

	collected, err := s.analyticsRepo.GetPaymentsCollected(ctx, 30)
	if err != nil {
		return nil, err
	}
	stats.PaymentsCollected = float64(collected) / 100

	// Calculate total revenue from all completed orders
	completeStatus := enum.OrderStatusComplete
	completeOrderParams := &repository.OrderFilterParams{
		Pagination:     &pagination.PaginationParams{Page: 1, PerPage: 1000},
		Status:         &completeStatus,
		SkipUserFilter: true,
	}
	completeOrders, _, err := s.orderRepo.List(ctx, userID, completeOrderParams)
	if err != nil {
		return nil, err
	}

	var totalRevenue int64
	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthlyRevenue int64

	for _, order := range completeOrders {
		totalRevenue += order.Total
		if order.OrderDate.After(startOfMonth) {
			monthlyRevenue += order.Total
		}
	}
	stats.TotalRevenue = float64(totalRevenue) / 100
	stats.MonthlyRevenue = float64(monthlyRevenue) / 100

	// Calculate daily sales for the last 7 days
	stats.DailySalesData = make([]DailySalesPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		dateStr := date.Format("2006-01-02")

		dayRevenue := int64(0)
		for _, order := range orders {
			if order.OrderDate.Format("2006-01-02") == dateStr {
				dayRevenue += order.Total
			}
		}

		stats.DailySalesData = append(stats.DailySalesData, DailySalesPoint{
			Date:    date.Format("Jan 02"),
			Revenue: float64(dayRevenue) / 100,
			Profit:  float64(dayRevenue) / 100 * 0.2, // Assume 20% profit margin
		})
	}

	return stats, nil
}
