package api

import (
	"net/http"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AdminHandler serves scheduling and pay management for admins.
type AdminHandler struct {
	scheduleService service.ScheduleService
	payrollService  service.PayrollService
	clock           attendance.Clock
	log             *zap.Logger
}

func NewAdminHandler(scheduleService service.ScheduleService, payrollService service.PayrollService, clock attendance.Clock, log *zap.Logger) *AdminHandler {
	return &AdminHandler{scheduleService: scheduleService, payrollService: payrollService, clock: clock, log: log}
}

// --- DTOs ---

type CreateSessionRequest struct {
	TrainerID string `json:"trainerId" binding:"required"`
	Title     string `json:"title"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string `json:"startTime" binding:"required,hhmm"`
	EndTime   string `json:"endTime" binding:"required,hhmm"`
}

type SetBasePayRequest struct {
	BasePay *float64 `json:"basePay" binding:"required,gte=0"`
}

// --- Handler Methods ---

// CreateSession godoc
// @Summary Schedule a session for a trainer
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSessionRequest true "Session details"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Assignee is not a trainer"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /admin/sessions [post]
func (h *AdminHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, err := primitive.ObjectIDFromHex(req.TrainerID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format.")
		return
	}
	date, err := time.ParseInLocation(dateLayout, req.Date, h.clock.Location)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid date: "+err.Error())
		return
	}

	session, err := h.scheduleService.CreateSession(c.Request.Context(), service.NewSessionInput{
		TrainerID: trainerID,
		Title:     req.Title,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapSessionToResponse(session, h.clock))
}

// ListTrainerSessions godoc
// @Summary A trainer's sessions in a period
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer's ObjectID Hex"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {array} SessionResponse
// @Router /admin/trainers/{trainerId}/sessions [get]
func (h *AdminHandler) ListTrainerSessions(c *gin.Context) {
	trainerID, ok := trainerIDParam(c)
	if !ok {
		return
	}
	from, to, ok := bindPeriodQuery(c, h.clock)
	if !ok {
		return
	}
	sessions, err := h.scheduleService.ListTrainerSessions(c.Request.Context(), trainerID, from, to)
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapSessionsToResponse(sessions, h.clock))
}

// SetBasePay godoc
// @Summary Set a trainer's per-session base pay
// @Description Applies to check-ins made after the change; existing records keep their pay.
// @Tags Admin
// @Accept json
// @Security BearerAuth
// @Param trainerId path string true "Trainer's ObjectID Hex"
// @Param request body SetBasePayRequest true "New base pay"
// @Success 204 "Updated"
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Trainer not found"
// @Router /admin/trainers/{trainerId}/base-pay [put]
func (h *AdminHandler) SetBasePay(c *gin.Context) {
	trainerID, ok := trainerIDParam(c)
	if !ok {
		return
	}
	var req SetBasePayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.scheduleService.SetBasePay(c.Request.Context(), trainerID, *req.BasePay); err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// TrainerPayroll godoc
// @Summary A trainer's payroll summary
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param trainerId path string true "Trainer's ObjectID Hex"
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {object} domain.PayrollSummary
// @Router /admin/trainers/{trainerId}/payroll [get]
func (h *AdminHandler) TrainerPayroll(c *gin.Context) {
	trainerID, ok := trainerIDParam(c)
	if !ok {
		return
	}
	from, to, ok := bindPeriodQuery(c, h.clock)
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

func trainerIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("trainerId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid trainer ID format.")
		return primitive.NilObjectID, false
	}
	return id, true
}
