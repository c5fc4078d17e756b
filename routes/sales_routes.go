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

// RegisterSalesRoutes sets up token sales, product sales, and commission
// resolution routes.
func RegisterSalesRoutes(e *echo.Echo, db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) {
	customerController := controllers.NewCustomerController(db)
	productSaleController := controllers.NewProductSaleController(db)
	commissionController := controllers.NewCommissionController(db, settings, hub)

	api := e.Group("/api", middleware.JWTMiddleware(), middleware.ActivityTracker(db))

	// Token sales
	api.POST("/customers", customerController.CreateCustomer,
		middleware.RequireRole(models.RoleSalesman))
	api.GET("/customers", customerController.ListCustomers)
	api.GET("/customers/:id", customerController.GetCustomer)
	api.GET("/customers/:id/token-barcode", customerController.GetTokenBarcode)

	// Product sales
	api.POST("/product-sales", productSaleController.CreateProductSale,
		middleware.RequireRole(models.RoleSalesman))
	api.GET("/product-sales", productSaleController.ListProductSales)
	api.POST("/product-sales/:id/installments", productSaleController.RecordInstallmentPayment,
		middleware.RequireRole(models.RoleRecoveryOfficer, models.RoleAccountant,
			models.RoleAdmin, models.RoleSuperAdmin))
	api.PUT("/product-sales/:id/delivery", productSaleController.UpdateDeliveryStatus,
		middleware.RequireRole(models.RoleDeliveryBoy, models.RoleStockManager,
			models.RoleAdmin, models.RoleSuperAdmin))
	api.PUT("/product-sales/:id/recovery-officer", productSaleController.AssignRecoveryOfficer,
		middleware.RequireBranchManagement())

	// Commission resolution
	resolve := api.Group("/commissions", middleware.RequireResolver())
	resolve.POST("/token/:id/approve", commissionController.ApproveTokenCommission)
	resolve.POST("/token/:id/reject", commissionController.RejectTokenCommission)
	resolve.POST("/product/:id/approve", commissionController.ApproveProductCommission)
	resolve.POST("/product/:id/reject", commissionController.RejectProductCommission)

	// Income ledger
	api.GET("/income", commissionController.ListMyIncome)
	api.GET("/income/summary", commissionController.GetIncomeSummary)
}
