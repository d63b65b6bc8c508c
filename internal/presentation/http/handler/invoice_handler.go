package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/application/service"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/presentation/http/dto/response"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// CreateInvoiceRequest represents the create invoice request body
type CreateInvoiceRequest struct {
	CustomerID    string               `json:"customer_id" binding:"required"`
	IssueDate     string               `json:"issue_date"`
	DueDate       string               `json:"due_date"`
	TaxPercentage float64              `json:"tax_percentage"`
	Notes         *string              `json:"notes"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1"`
}

// InvoiceItemRequest represents a line item in the request
type InvoiceItemRequest struct {
	ProductID   *string `json:"product_id"`
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required,min=1"`
	UnitPrice   float64 `json:"unit_price" binding:"required"`
}

// List handles listing invoices
// @Summary List Invoices
// @Description Get all invoices with pagination and filtering
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param status query int false "Status filter"
// @Param customer_id query string false "Customer filter"
// @Param outstanding query bool false "Only invoices with a balance due"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	input := &service.ListInvoicesInput{
		UserID:       *userID,
		IsSuperAdmin: isSuperAdmin,
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:      c.Query("search"),
		Outstanding: c.Query("outstanding") == "true",
	}

	if statusStr := c.Query("status"); statusStr != "" {
		if statusInt, err := strconv.Atoi(statusStr); err == nil {
			status := enum.InvoiceStatus(statusInt)
			input.Status = &status
		}
	}

	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			input.CustomerID = &customerID
		}
	}

	if startDateStr := c.Query("start_date"); startDateStr != "" {
		if startDate, err := time.Parse("2006-01-02", startDateStr); err == nil {
			input.StartDate = &startDate
		}
	}

	if endDateStr := c.Query("end_date"); endDateStr != "" {
		if endDate, err := time.Parse("2006-01-02", endDateStr); err == nil {
			input.EndDate = &endDate
		}
	}

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Invoices retrieved successfully", result)
}

// Get handles getting a single invoice
// @Summary Get Invoice
// @Description Get an invoice by ID with its items and allocations
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// Create handles creating an invoice
// @Summary Create Invoice
// @Description Create a new open invoice for a customer
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	var issueDate time.Time
	if req.IssueDate != "" {
		issueDate, err = time.Parse("2006-01-02", req.IssueDate)
		if err != nil {
			response.BadRequest(c, "Invalid issue date format. Use YYYY-MM-DD")
			return
		}
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			response.BadRequest(c, "Invalid due date format. Use YYYY-MM-DD")
			return
		}
		dueDate = &parsed
	}

	items := make([]service.InvoiceItemInput, len(req.Items))
	for i, item := range req.Items {
		var productID *uuid.UUID
		if item.ProductID != nil && *item.ProductID != "" {
			parsed, err := uuid.Parse(*item.ProductID)
			if err != nil {
				response.BadRequest(c, "Invalid product ID")
				return
			}
			productID = &parsed
		}
		items[i] = service.InvoiceItemInput{
			ProductID:   productID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &service.CreateInvoiceInput{
		UserID:        *userID,
		CustomerID:    customerID,
		IssueDate:     issueDate,
		DueDate:       dueDate,
		TaxPercentage: req.TaxPercentage,
		Notes:         req.Notes,
		Items:         items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// CreateFromOrder handles generating an invoice from an order
// @Summary Invoice an Order
// @Description Generate an invoice carrying over an order's totals and items
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Success 201 {object} response.APIResponse
// @Router /orders/{id}/invoice [post]
func (h *InvoiceHandler) CreateFromOrder(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		DueDate string `json:"due_date"`
	}
	// Body is optional; ignore bind errors for an empty body
	_ = c.ShouldBindJSON(&req)

	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			response.BadRequest(c, "Invalid due date format. Use YYYY-MM-DD")
			return
		}
		dueDate = &parsed
	}

	invoice, err := h.invoiceService.CreateFromOrder(c.Request.Context(), *userID, orderID, dueDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice created successfully", invoice)
}

// Void handles voiding an invoice
// @Summary Void Invoice
// @Description Void an invoice that has not received any payment
// @Tags invoices
// @Security BearerAuth
// @Param id path string true "Invoice ID"
// @Success 200 {object} response.APIResponse
// @Router /invoices/{id}/void [post]
func (h *InvoiceHandler) Void(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.VoidInvoice(c.Request.Context(), *userID, id, isSuperAdmin); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice voided successfully", nil)
}

// GetOpenByCustomer handles listing a customer's open invoices
// @Summary Open Invoices
// @Description Get a customer's open invoices ordered oldest due first
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} response.APIResponse
// @Router /customers/{id}/open-invoices [get]
func (h *InvoiceHandler) GetOpenByCustomer(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	invoices, err := h.invoiceService.GetOpenInvoices(c.Request.Context(), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Open invoices retrieved successfully", invoices)
}
