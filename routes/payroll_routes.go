package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/controllers"
	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/websocket"
)

// RegisterPayrollRoutes sets up the salary payout engine and incentive
// award routes.
func RegisterPayrollRoutes(e *echo.Echo, db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) {
	salaryController := controllers.NewSalaryController(db, settings, hub)
	incentiveController := controllers.NewIncentiveController(db, settings, hub)

	payroll := e.Group("/api/payroll",
		middleware.JWTMiddleware(),
		middleware.ActivityTracker(db),
		middleware.RequireRole(models.RoleSuperAdmin, models.RoleAdmin, models.RoleAccountant),
	)
	payroll.POST("/run", salaryController.ProcessSalaries)
	payroll.POST("/:id/reverse", salaryController.ReverseSalaryPayout)
	payroll.GET("", salaryController.ListPayouts)

	e.POST("/api/incentives/award", incentiveController.AwardIncentive,
		middleware.JWTMiddleware(),
		middleware.ActivityTracker(db),
		middleware.RequireResolver(),
	)
}
