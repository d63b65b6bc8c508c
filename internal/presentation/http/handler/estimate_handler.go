package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/application/service"
	"github.com/kipronoh/bizpilot-api/internal/domain/enum"
	"github.com/kipronoh/bizpilot-api/internal/presentation/http/dto/response"
	"github.com/kipronoh/bizpilot-api/pkg/pagination"
)

// EstimateHandler handles estimate-related HTTP requests
type EstimateHandler struct {
	estimateService *service.EstimateService
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimateService *service.EstimateService) *EstimateHandler {
	return &EstimateHandler{estimateService: estimateService}
}

// CreateEstimateRequest represents the create estimate request body
type CreateEstimateRequest struct {
	CustomerID         *string               `json:"customer_id"`
	Date               string                `json:"date" binding:"required"`
	TaxPercentage      float64               `json:"tax_percentage"`
	DiscountPercentage float64               `json:"discount_percentage"`
	ShippingAmount     float64               `json:"shipping_amount"`
	Note               *string               `json:"note"`
	Status             int                   `json:"status"`
	Items              []EstimateItemRequest `json:"items" binding:"required,min=1"`
}

// EstimateItemRequest represents a line item in the request
type EstimateItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	UnitPrice float64 `json:"unit_price" binding:"required"`
}

// UpdateEstimateStatusRequest represents the status update request body
type UpdateEstimateStatusRequest struct {
	Status int `json:"status" binding:"min=0"`
}

// List handles listing estimates
// @Summary List Estimates
// @Description Get all estimates with pagination and filtering
// @Tags estimates
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Param search query string false "Search term"
// @Param status query int false "Status filter"
// @Success 200 {object} response.APIResponse
// @Router /estimates [get]
func (h *EstimateHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	page := 1
	perPage := 15
	if p := c.Query("page"); p != "" {
		if parsed, err := parsePositiveInt(p); err == nil {
			page = parsed
		}
	}
	if pp := c.Query("per_page"); pp != "" {
		if parsed, err := parsePositiveInt(pp); err == nil {
			perPage = parsed
		}
	}

	search := c.Query("search")

	var status *enum.EstimateStatus
	if s := c.Query("status"); s != "" {
		if parsed, err := parseNonNegativeInt(s); err == nil {
			st := enum.EstimateStatus(parsed)
			status = &st
		}
	}

	var customerID *uuid.UUID
	if cid := c.Query("customer_id"); cid != "" {
		if parsed, err := uuid.Parse(cid); err == nil {
			customerID = &parsed
		}
	}

	result, err := h.estimateService.ListEstimates(c.Request.Context(), &service.ListEstimatesInput{
		UserID:       *userID,
		IsSuperAdmin: isSuperAdmin,
		Pagination: &pagination.PaginationParams{
			Page:    page,
			PerPage: perPage,
		},
		Search:     search,
		Status:     status,
		CustomerID: customerID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Estimates retrieved successfully", result)
}

// Get handles getting a single estimate
// @Summary Get Estimate
// @Description Get an estimate by ID
// @Tags estimates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Estimate ID"
// @Success 200 {object} response.APIResponse
// @Router /estimates/{id} [get]
func (h *EstimateHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid estimate ID")
		return
	}

	estimate, err := h.estimateService.GetEstimate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Estimate retrieved successfully", estimate)
}

// Create handles creating an estimate
// @Summary Create Estimate
// @Description Create a new estimate
// @Tags estimates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body CreateEstimateRequest true "Estimate data"
// @Success 201 {object} response.APIResponse
// @Router /estimates [post]
func (h *EstimateHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// Parse date
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	// Parse customer ID if provided
	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		parsed, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		customerID = &parsed
	}

	// Parse items
	items := make([]service.EstimateItemInput, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			response.BadRequest(c, "Invalid product ID")
			return
		}
		items[i] = service.EstimateItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	estimate, err := h.estimateService.CreateEstimate(c.Request.Context(), &service.CreateEstimateInput{
		UserID:             *userID,
		CustomerID:         customerID,
		Date:               date,
		TaxPercentage:      req.TaxPercentage,
		DiscountPercentage: req.DiscountPercentage,
		ShippingAmount:     req.ShippingAmount,
		Note:               req.Note,
		Status:             enum.EstimateStatus(req.Status),
		Items:              items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Estimate created successfully", estimate)
}

// Update handles updating an estimate
// @Summary Update Estimate
// @Description Update an existing estimate
// @Tags estimates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param request body CreateEstimateRequest true "Estimate data"
// @Success 200 {object} response.APIResponse
// @Router /estimates/{id} [put]
func (h *EstimateHandler) Update(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid estimate ID")
		return
	}

	var req CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	// Parse date
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, "Invalid date format. Use YYYY-MM-DD")
		return
	}

	// Parse customer ID if provided
	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		parsed, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		customerID = &parsed
	}

	// Parse items
	items := make([]service.EstimateItemInput, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			response.BadRequest(c, "Invalid product ID")
			return
		}
		items[i] = service.EstimateItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	estimate, err := h.estimateService.UpdateEstimate(c.Request.Context(), &service.UpdateEstimateInput{
		UserID:             *userID,
		ID:                 id,
		IsSuperAdmin:       isSuperAdmin,
		CustomerID:         customerID,
		Date:               date,
		TaxPercentage:      req.TaxPercentage,
		DiscountPercentage: req.DiscountPercentage,
		ShippingAmount:     req.ShippingAmount,
		Note:               req.Note,
		Status:             enum.EstimateStatus(req.Status),
		Items:              items,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Estimate updated successfully", estimate)
}

// UpdateStatus handles updating an estimate's status
// @Summary Update Estimate Status
// @Description Update the status of an estimate
// @Tags estimates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Estimate ID"
// @Param request body UpdateEstimateStatusRequest true "Status"
// @Success 200 {object} response.APIResponse
// @Router /estimates/{id}/status [patch]
func (h *EstimateHandler) UpdateStatus(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid estimate ID")
		return
	}

	var req UpdateEstimateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.estimateService.UpdateEstimateStatus(c.Request.Context(), *userID, id, enum.EstimateStatus(req.Status), isSuperAdmin); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Estimate status updated successfully", nil)
}

// Delete handles deleting an estimate
// @Summary Delete Estimate
// @Description Delete an estimate by ID
// @Tags estimates
// @Security BearerAuth
// @Param id path string true "Estimate ID"
// @Success 204
// @Router /estimates/{id} [delete]
func (h *EstimateHandler) Delete(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	isSuperAdmin := IsSuperAdmin(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid estimate ID")
		return
	}

	if err := h.estimateService.DeleteEstimate(c.Request.Context(), *userID, id, isSuperAdmin); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Helper functions for parsing query parameters
func parsePositiveInt(s string) (int, error) {
	var result int
	_, err := fmt.Sscanf(s, "%d", &result)
	if err != nil || result < 1 {
		return 1, err
	}
	return result, nil
}

func parseNonNegativeInt(s string) (int, error) {
	var result int
	_, err := fmt.Sscanf(s, "%d", &result)
	if err != nil || result < 0 {
		return 0, err
	}
	return result, nil
}
