package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/controllers"
	"github.com/distrohq/backoffice_backend/middleware"
)

// RegisterAuthRoutes sets up authentication and session routes.
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client) {
	authController := controllers.NewAuthController(db)

	// Public
	e.POST("/api/auth/login", authController.Login)
	e.POST("/api/auth/provider-login", authController.ProviderLogin)
	e.POST("/api/auth/staff/otp", authController.SendStaffOTP)
	e.POST("/api/auth/staff/verify-otp", authController.VerifyStaffOTP)
	e.GET("/api/auth/validate", authController.ValidateSession)

	// Authenticated
	session := e.Group("/api/auth", middleware.JWTMiddleware())
	session.POST("/logout", authController.Logout)
	session.POST("/fcm-token", authController.RegisterFCMToken)
}
