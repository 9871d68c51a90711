package api

import (
	"net/http"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PayrollHandler exposes a trainer's own payroll figures.
type PayrollHandler struct {
	payrollService service.PayrollService
	clock          attendance.Clock
	log            *zap.Logger
}

func NewPayrollHandler(payrollService service.PayrollService, clock attendance.Clock, log *zap.Logger) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService, clock: clock, log: log}
}

type PayrollExportResponse struct {
	ReportID    string                 `json:"reportId"`
	FileName    string                 `json:"fileName"`
	Size        int64                  `json:"size"`
	GeneratedAt time.Time              `json:"generatedAt"`
	DownloadURL string                 `json:"downloadUrl"`
	Summary     *domain.PayrollSummary `json:"summary"`
}

// Summary godoc
// @Summary Payroll summary for the caller
// @Tags Payroll
// @Produce json
// @Security BearerAuth
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.PayrollSummary
// @Failure 400 {object} gin.H "Invalid period"
// @Router /trainer/payroll [get]
func (h *PayrollHandler) Summary(c *gin.Context) {
	from, to, ok := bindPeriodQuery(c, h.clock)
	if !ok {
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	summary, err := h.payrollService.Summarize(c.Request.Context(), trainerID, from, to)
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Export godoc
// @Summary Export the caller's payroll as CSV
// @Description Uploads the report to object storage and returns a short-lived download URL.
// @Tags Payroll
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PeriodQuery true "Period, both days inclusive"
// @Success 201 {object} PayrollExportResponse
// @Failure 400 {object} gin.H "Invalid period"
// @Failure 503 {object} gin.H "Report storage unavailable"
// @Router /trainer/payroll/export [post]
func (h *PayrollHandler) Export(c *gin.Context) {
	var req PeriodQuery
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	from, to, err := req.Bounds(h.clock.Location)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid period: "+err.Error())
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	export, err := h.payrollService.Export(c.Request.Context(), trainerID, from, to)
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, PayrollExportResponse{
		ReportID:    export.Report.ID.Hex(),
		FileName:    export.Report.FileName,
		Size:        export.Report.Size,
		GeneratedAt: export.Report.GeneratedAt,
		DownloadURL: export.DownloadURL,
		Summary:     export.Summary,
	})
}
