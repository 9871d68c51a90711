package api

import (
	"errors"
	"net/http"

	"alcyxob/gym-attendance/internal/logger"
	"alcyxob/gym-attendance/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrSessionNotFound, http.StatusNotFound},
	{service.ErrRecordNotFound, http.StatusNotFound},
	{service.ErrTrainerNotFound, http.StatusNotFound},
	{service.ErrUserNotFound, http.StatusNotFound},

	{service.ErrNotAssigned, http.StatusForbidden},
	{service.ErrNotOwner, http.StatusForbidden},
	{service.ErrUserNotTrainer, http.StatusForbidden},
	{service.ErrAdminSignupDisabled, http.StatusForbidden},

	{service.ErrAlreadyCheckedIn, http.StatusConflict},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUserAlreadyExists, http.StatusConflict},

	{service.ErrInvalidTimeFormat, http.StatusBadRequest},
	{service.ErrInvalidSelector, http.StatusBadRequest},
	{service.ErrInvalidPeriod, http.StatusBadRequest},
	{service.ErrSessionEndsEarly, http.StatusBadRequest},
	{service.ErrSessionFieldsEmpty, http.StatusBadRequest},
	{service.ErrInvalidBasePay, http.StatusBadRequest},
	{service.ErrInvalidRole, http.StatusBadRequest},
	{service.ErrCredentialsRequired, http.StatusBadRequest},

	{service.ErrAuthenticationFailed, http.StatusUnauthorized},

	{service.ErrStorage, http.StatusServiceUnavailable},
	{service.ErrReportsDisabled, http.StatusServiceUnavailable},
}

// respondWithServiceError maps a service error onto an HTTP status. Timing
// errors also report how many minutes remain until the action is allowed.
func respondWithServiceError(c *gin.Context, log *zap.Logger, err error) {
	var timing *service.TimingError
	if errors.As(err, &timing) {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
			"error":            timing.Kind.Error(),
			"minutesRemaining": timing.MinutesRemaining,
		})
		return
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			if m.status >= http.StatusInternalServerError {
				log.Error("service unavailable", requestFields(c, err)...)
			}
			abortWithError(c, m.status, m.err.Error())
			return
		}
	}

	log.Error("unexpected service error", requestFields(c, err)...)
	abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
}

func requestFields(c *gin.Context, err error) []zap.Field {
	return []zap.Field{
		zap.String(logger.FieldRequestID, c.GetString(ContextRequestIDKey)),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	}
}
