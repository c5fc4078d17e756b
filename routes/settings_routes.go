package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/controllers"
	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/websocket"
)

// RegisterSettingsRoutes sets up the settings domains and the change
// request workflow.
func RegisterSettingsRoutes(e *echo.Echo, db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) {
	settingsController := controllers.NewSettingsController(db, settings, hub)

	// Public, the signup form reads this before any login
	e.GET("/api/signup-roles", settingsController.GetVisibleSignupRoles)

	api := e.Group("/api/settings", middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	api.GET("/requests/pending", settingsController.ListPendingRequests,
		middleware.RequireResolver())
	api.POST("/requests/:id/approve", settingsController.ApproveRequest,
		middleware.RequireResolver())
	api.POST("/requests/:id/reject", settingsController.RejectRequest,
		middleware.RequireResolver())

	api.GET("/:domain", settingsController.GetSettings)
	api.PUT("/:domain", settingsController.SubmitSettingsChange)
	api.POST("/:domain/requests", settingsController.SubmitSettingsChange)
	api.GET("/:domain/history", settingsController.GetRequestHistory,
		middleware.RequireResolver())
}
