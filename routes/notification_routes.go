package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/controllers"
	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/websocket"
)

// RegisterNotificationRoutes sets up in-app notifications, the dashboard,
// and the live event socket.
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	notificationController := controllers.NewNotificationController(db)
	dashboardController := controllers.NewDashboardController(db, config.GetRedisClient())

	api := e.Group("/api", middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	api.GET("/notifications", notificationController.ListMyNotifications)
	api.PUT("/notifications/:id/read", notificationController.MarkNotificationRead)

	api.GET("/dashboard/summary", dashboardController.GetSummary,
		middleware.RequireResolver())

	api.GET("/ws", func(c echo.Context) error {
		userID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid token",
			})
		}
		return websocket.HandleWebSocket(c, hub, userID)
	})
}
