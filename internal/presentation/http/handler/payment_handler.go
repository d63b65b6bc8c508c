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

// PaymentHandler handles payment-related HTTP requests
type PaymentHandler struct {
	paymentService *service.PaymentService
	printerService *service.PrinterService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService, printerService *service.PrinterService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		printerService: printerService,
	}
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	CustomerID  string  `json:"customer_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	Method      string  `json:"method"`
	PaymentDate string  `json:"payment_date"`
	Notes       *string `json:"notes"`
}

// Record handles recording a payment and allocating it across the customer's
// open invoices
// @Summary Record Payment
// @Description Record a customer payment; it is split across open invoices oldest due first
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body RecordPaymentRequest true "Payment data"
// @Success 201 {object} response.APIResponse
// @Router /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	var method enum.PaymentMethod
	if req.Method != "" {
		if err := method.UnmarshalJSON([]byte(`"` + req.Method + `"`)); err != nil {
			response.BadRequest(c, "Invalid payment method")
			return
		}
	}

	var paymentDate time.Time
	if req.PaymentDate != "" {
		paymentDate, err = time.Parse("2006-01-02", req.PaymentDate)
		if err != nil {
			response.BadRequest(c, "Invalid payment date format. Use YYYY-MM-DD")
			return
		}
	}

	payment, err := h.paymentService.AllocatePayment(c.Request.Context(), &service.AllocatePaymentInput{
		UserID:      *userID,
		CustomerID:  customerID,
		Amount:      req.Amount,
		Method:      method,
		PaymentDate: paymentDate,
		Notes:       req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payment recorded successfully", payment)
}

// List handles listing payments
// @Summary List Payments
// @Description Get all payments with pagination and filtering
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param customer_id query string false "Customer filter"
// @Success 200 {object} response.APIResponse
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))

	input := &service.ListPaymentsInput{
		UserID:       *userID,
		IsSuperAdmin: isSuperAdmin,
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search: c.Query("search"),
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

	result, err := h.paymentService.ListPayments(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payments retrieved successfully", result)
}

// Get handles getting a single payment
// @Summary Get Payment
// @Description Get a payment by ID with its allocations
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.APIResponse
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment retrieved successfully", payment)
}

// GetReceipt handles composing the printable receipt for a payment
// @Summary Get Payment Receipt
// @Description Compose the printable receipt for a recorded payment
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.APIResponse
// @Router /payments/{id}/receipt [get]
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	receipt, err := h.paymentService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// PrintReceipt handles printing a payment receipt
// @Summary Print Payment Receipt
// @Description Print the receipt for a recorded payment
// @Tags payments
// @Security BearerAuth
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.APIResponse
// @Router /payments/{id}/receipt/print [post]
func (h *PaymentHandler) PrintReceipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid payment ID")
		return
	}

	receipt, err := h.paymentService.BuildReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.printerService.PrintPaymentReceipt(receipt); err != nil {
		// Return the receipt data so the client can render it when the
		// printer is unavailable
		response.OK(c, "Printer unavailable, returning receipt data", receipt)
		return
	}

	response.OK(c, "Receipt printed successfully", receipt)
}
