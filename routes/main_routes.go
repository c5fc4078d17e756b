package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/websocket"
)

// SetupRoutes configures all API routes by calling individual route
// registration functions.
func SetupRoutes(e *echo.Echo, db *mongo.Client, hub *websocket.Hub) {
	settings := services.NewSettingsService(db, config.GetRedisClient())

	RegisterAuthRoutes(e, db)
	RegisterUserRoutes(e, db)
	RegisterSalesRoutes(e, db, settings, hub)
	RegisterSettingsRoutes(e, db, settings, hub)
	RegisterPayrollRoutes(e, db, settings, hub)
	RegisterNotificationRoutes(e, db, hub)
}
