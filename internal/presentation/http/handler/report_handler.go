package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kipronoh/bizpilot-api/internal/application/service"
	"github.com/kipronoh/bizpilot-api/internal/presentation/http/dto/response"
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	statementService *service.StatementService
}

// NewReportHandler creates a new report handler
func NewReportHandler(statementService *service.StatementService) *ReportHandler {
	return &ReportHandler{statementService: statementService}
}

// GetStatement handles building a customer statement
// @Summary Customer Statement
// @Description Build a chronological ledger of a customer's charges and payments for a date range
// @Tags reports
// @Security BearerAuth
// @Produce json
// @Param id path string true "Customer ID"
// @Param start_date query string true "Start date (YYYY-MM-DD)"
// @Param end_date query string true "End date (YYYY-MM-DD)"
// @Param include_orders query bool false "Include uninvoiced order charges"
// @Success 200 {object} response.APIResponse
// @Router /customers/{id}/statement [get]
func (h *ReportHandler) GetStatement(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	startDateStr := c.Query("start_date")
	endDateStr := c.Query("end_date")
	if startDateStr == "" || endDateStr == "" {
		response.BadRequest(c, "start_date and end_date are required")
		return
	}

	startDate, err := time.Parse("2006-01-02", startDateStr)
	if err != nil {
		response.BadRequest(c, "Invalid start date format. Use YYYY-MM-DD")
		return
	}

	endDate, err := time.Parse("2006-01-02", endDateStr)
	if err != nil {
		response.BadRequest(c, "Invalid end date format. Use YYYY-MM-DD")
		return
	}

	statement, err := h.statementService.BuildStatement(c.Request.Context(), &service.BuildStatementInput{
		CustomerID:    customerID,
		StartDate:     startDate,
		EndDate:       endDate,
		IncludeOrders: c.Query("include_orders") == "true",
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Statement built successfully", statement)
}
