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

// Services bundles what the HTTP layer calls into.
type Services struct {
	Auth          service.AuthService
	Attendance    service.AttendanceService
	Schedule      service.ScheduleService
	Payroll       service.PayrollService
	Notifications service.NotificationService
}

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	clock attendance.Clock,
	now func() time.Time,
	services Services,
	log *zap.Logger,
) {
	authHandler := NewAuthHandler(services.Auth, log)
	attendanceHandler := NewAttendanceHandler(services.Attendance, services.Schedule, services.Notifications, clock, log)
	if now != nil {
		attendanceHandler.now = now
	}
	payrollHandler := NewPayrollHandler(services.Payroll, clock, log)
	adminHandler := NewAdminHandler(services.Schedule, services.Payroll, clock, log)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Trainer Routes ---
		trainerGroup := protected.Group("/trainer")
		trainerGroup.Use(RoleMiddleware(domain.RoleTrainer))
		{
			// POST /api/v1/trainer/attendance/check-in
			trainerGroup.POST("/attendance/check-in", attendanceHandler.CheckIn)
			// POST /api/v1/trainer/attendance/check-out
			trainerGroup.POST("/attendance/check-out", attendanceHandler.CheckOut)
			// GET /api/v1/trainer/attendance?from=2024-05-01&to=2024-05-31
			trainerGroup.GET("/attendance", attendanceHandler.ListRecords)
			trainerGroup.GET("/sessions", attendanceHandler.ListSessions)
			trainerGroup.GET("/notifications", attendanceHandler.ListNotifications)

			trainerGroup.GET("/payroll", payrollHandler.Summary)
			trainerGroup.POST("/payroll/export", payrollHandler.Export)
		}

		// --- Admin Routes ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.POST("/sessions", adminHandler.CreateSession)
			adminGroup.GET("/trainers/:trainerId/sessions", adminHandler.ListTrainerSessions)
			adminGroup.PUT("/trainers/:trainerId/base-pay", adminHandler.SetBasePay)
			adminGroup.GET("/trainers/:trainerId/payroll", adminHandler.TrainerPayroll)
		}
	}
}
