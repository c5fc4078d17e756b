package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/controllers"
	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
)

// RegisterUserRoutes sets up staff account management routes.
func RegisterUserRoutes(e *echo.Echo, db *mongo.Client) {
	userController := controllers.NewUserController(db)

	users := e.Group("/api/users", middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	users.GET("/me", userController.GetProfile)
	users.GET("/:id", userController.GetUser)
	users.GET("/:id/team", userController.GetTeam)

	// Account administration is restricted to HR and above.
	admin := users.Group("", middleware.RequireRole(
		models.RoleSuperAdmin, models.RoleAdmin, models.RoleHR,
	))
	admin.POST("", userController.CreateUser)
	admin.GET("", userController.ListUsers)
	admin.PUT("/:id", userController.UpdateUser)
	admin.PUT("/:id/disabled", userController.SetUserDisabled)
}
