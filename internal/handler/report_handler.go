package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MathewAndreiAbao/eguidance-api/internal/models"
	"github.com/MathewAndreiAbao/eguidance-api/internal/service"
	appErrors "github.com/MathewAndreiAbao/eguidance-api/pkg/errors"
	"github.com/MathewAndreiAbao/eguidance-api/pkg/response"
)

// ReportHandler exposes counselor usage reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs a report handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Weekly godoc
// @Summary Weekly usage statistics
// @Tags Reports
// @Produce json
// @Param startDate query string false "Any date inside the target week"
// @Success 200 {object} response.Envelope
// @Router /reports/weekly [get]
func (h *ReportHandler) Weekly(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.service.Weekly(c.Request.Context(), claims.Actor(), c.Query("startDate"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Monthly godoc
// @Summary Monthly usage statistics
// @Tags Reports
// @Produce json
// @Param year query int false "Target year"
// @Param month query int false "Target month (1-12)"
// @Success 200 {object} response.Envelope
// @Router /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))
	report, err := h.service.Monthly(c.Request.Context(), claims.Actor(), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Download godoc
// @Summary Download a usage report
// @Tags Reports
// @Produce octet-stream
// @Param period query string false "weekly|monthly (default weekly)"
// @Param format query string false "csv|pdf (default pdf)"
// @Param startDate query string false "Any date inside the target week"
// @Param year query int false "Target year (monthly)"
// @Param month query int false "Target month (monthly)"
// @Success 200 {file} binary
// @Router /reports/download [get]
func (h *ReportHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var report *models.UsageReport
	var err error
	switch c.DefaultQuery("period", "weekly") {
	case "monthly":
		year, _ := strconv.Atoi(c.Query("year"))
		month, _ := strconv.Atoi(c.Query("month"))
		report, err = h.service.Monthly(c.Request.Context(), claims.Actor(), year, month)
	default:
		report, err = h.service.Weekly(c.Request.Context(), claims.Actor(), c.Query("startDate"))
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Export(report, service.ExportFormat(c.DefaultQuery("format", "pdf")))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
