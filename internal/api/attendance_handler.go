package api

import (
	"net/http"
	"time"

	"alcyxob/gym-attendance/internal/attendance"
	"alcyxob/gym-attendance/internal/domain"
	"alcyxob/gym-attendance/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AttendanceHandler serves the trainer-facing attendance endpoints.
type AttendanceHandler struct {
	attendanceService   service.AttendanceService
	scheduleService     service.ScheduleService
	notificationService service.NotificationService
	clock               attendance.Clock
	now                 func() time.Time
	log                 *zap.Logger
}

func NewAttendanceHandler(
	attendanceService service.AttendanceService,
	scheduleService service.ScheduleService,
	notificationService service.NotificationService,
	clock attendance.Clock,
	log *zap.Logger,
) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService:   attendanceService,
		scheduleService:     scheduleService,
		notificationService: notificationService,
		clock:               clock,
		now:                 time.Now,
		log:                 log,
	}
}

// --- DTOs ---

type CheckInRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

// CheckOutRequest selects the record to close; RecordID wins when both are set.
type CheckOutRequest struct {
	RecordID  string `json:"recordId"`
	SessionID string `json:"sessionId"`
}

type AttendanceRecordResponse struct {
	ID                     string                `json:"id"`
	TrainerID              string                `json:"trainerId"`
	SessionID              string                `json:"sessionId"`
	CheckInInstant         time.Time             `json:"checkInInstant"`
	CheckOutInstant        *time.Time            `json:"checkOutInstant,omitempty"`
	CheckInStatus          domain.CheckInStatus  `json:"checkInStatus"`
	CheckOutStatus         domain.CheckOutStatus `json:"checkOutStatus"`
	MinutesLateAtCheckIn   int                   `json:"minutesLateAtCheckIn"`
	SessionDurationMinutes *int                  `json:"sessionDurationMinutes,omitempty"`
	BasePay                float64               `json:"basePay"`
	PenaltyAmount          float64               `json:"penaltyAmount"`
	NetPay                 float64               `json:"netPay"`
}

type SessionResponse struct {
	ID        string `json:"id"`
	TrainerID string `json:"trainerId"`
	Title     string `json:"title,omitempty"`
	Date      string `json:"date"` // YYYY-MM-DD in the gym's timezone
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type NotificationResponse struct {
	ID        string                  `json:"id"`
	RecordID  string                  `json:"recordId"`
	Kind      domain.NotificationKind `json:"kind"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"createdAt"`
}

// --- Handler Methods ---

// CheckIn godoc
// @Summary Check in to an assigned session
// @Description Opens an attendance record. Arrivals after 15 minutes before the start are LATE and penalised.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckInRequest true "Session to check in to"
// @Success 201 {object} AttendanceRecordResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Not assigned to this session"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Already checked in"
// @Failure 422 {object} gin.H "Too early, with minutesRemaining"
// @Failure 503 {object} gin.H "Storage unavailable"
// @Router /trainer/attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	sessionID, err := primitive.ObjectIDFromHex(req.SessionID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.CheckIn(c.Request.Context(), trainerID, sessionID, h.now())
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, MapRecordToResponse(record))
}

// CheckOut godoc
// @Summary Check out of a session
// @Description Closes the open record selected by recordId or sessionId once the session has ended.
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CheckOutRequest true "Record or session to close"
// @Success 200 {object} AttendanceRecordResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 403 {object} gin.H "Record belongs to another trainer"
// @Failure 404 {object} gin.H "No open record"
// @Failure 409 {object} gin.H "Concurrent checkout"
// @Failure 422 {object} gin.H "Too early, with minutesRemaining"
// @Router /trainer/attendance/check-out [post]
func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var selector service.CheckOutSelector
	var err error
	if req.RecordID != "" {
		if selector.RecordID, err = primitive.ObjectIDFromHex(req.RecordID); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid record ID format.")
			return
		}
	}
	if req.SessionID != "" {
		if selector.SessionID, err = primitive.ObjectIDFromHex(req.SessionID); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid session ID format.")
			return
		}
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	record, err := h.attendanceService.CheckOut(c.Request.Context(), trainerID, selector, h.now())
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, MapRecordToResponse(record))
}

// ListRecords godoc
// @Summary Attendance history
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {array} AttendanceRecordResponse
// @Failure 400 {object} gin.H "Invalid period"
// @Router /trainer/attendance [get]
func (h *AttendanceHandler) ListRecords(c *gin.Context) {
	from, to, ok := bindPeriodQuery(c, h.clock)
	if !ok {
		return
	}
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}

	records, err := h.attendanceService.ListRecords(c.Request.Context(), trainerID, from, to)
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	resp := make([]AttendanceRecordResponse, 0, len(records))
	for i := range records {
		resp = append(resp, MapRecordToResponse(&records[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ListSessions godoc
// @Summary Sessions assigned to the caller
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day, inclusive (YYYY-MM-DD)"
// @Success 200 {array} SessionResponse
// @Router /trainer/sessions [get]
func (h *AttendanceHandler) ListSessions(c *gin.Context) {
	from, to, ok := bindPeriodQuery(c, h.clock)
	if !ok {
		return
	}
	trainerID, ok := currentUserID(c)
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

// ListNotifications godoc
// @Summary Lateness notices for the caller, newest first
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Success 200 {array} NotificationResponse
// @Router /trainer/notifications [get]
func (h *AttendanceHandler) ListNotifications(c *gin.Context) {
	trainerID, ok := currentUserID(c)
	if !ok {
		return
	}
	list, err := h.notificationService.ListForTrainer(c.Request.Context(), trainerID)
	if err != nil {
		respondWithServiceError(c, h.log, err)
		return
	}
	resp := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		resp = append(resp, NotificationResponse{
			ID:        n.ID.Hex(),
			RecordID:  n.RecordID.Hex(),
			Kind:      n.Kind,
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func bindPeriodQuery(c *gin.Context, clock attendance.Clock) (time.Time, time.Time, bool) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	from, to, err := q.Bounds(clock.Location)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid period: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// MapRecordToResponse converts a domain AttendanceRecord to its DTO.
func MapRecordToResponse(r *domain.AttendanceRecord) AttendanceRecordResponse {
	return AttendanceRecordResponse{
		ID:                     r.ID.Hex(),
		TrainerID:              r.TrainerID.Hex(),
		SessionID:              r.SessionID.Hex(),
		CheckInInstant:         r.CheckInInstant,
		CheckOutInstant:        r.CheckOutInstant,
		CheckInStatus:          r.CheckInStatus,
		CheckOutStatus:         r.CheckOutStatus,
		MinutesLateAtCheckIn:   r.MinutesLateAtCheckIn,
		SessionDurationMinutes: r.SessionDurationMinutes,
		BasePay:                r.BasePay,
		PenaltyAmount:          r.PenaltyAmount,
		NetPay:                 r.NetPay,
	}
}

// MapSessionToResponse converts a domain Session to its DTO.
func MapSessionToResponse(s *domain.Session, clock attendance.Clock) SessionResponse {
	return SessionResponse{
		ID:        s.ID.Hex(),
		TrainerID: s.TrainerID.Hex(),
		Title:     s.Title,
		Date:      clock.Day(s.Date).Format(dateLayout),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

func MapSessionsToResponse(sessions []domain.Session, clock attendance.Clock) []SessionResponse {
	resp := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, MapSessionToResponse(&sessions[i], clock))
	}
	return resp
}
