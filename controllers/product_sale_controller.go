package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

type ProductSaleController struct {
	DB *mongo.Client
}

func NewProductSaleController(db *mongo.Client) *ProductSaleController {
	return &ProductSaleController{DB: db}
}

func (pc *ProductSaleController) sales() *mongo.Collection {
	return config.GetCollection(pc.DB, "productSales")
}

func (pc *ProductSaleController) customers() *mongo.Collection {
	return config.GetCollection(pc.DB, "customers")
}

// CreateProductSale records a product purchase against an available token.
// The token flips to consumed and the sale in the same transaction, so a
// token can never back two purchases.
func (pc *ProductSaleController) CreateProductSale(c echo.Context) error {
	salesmanID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CreateProductSaleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}
	if req.PaymentMethod == models.PaymentMethodInstallments && req.Installments <= 0 {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Installment sales require an installment count",
		})
	}

	customerID, err := primitive.ObjectIDFromHex(req.CustomerID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer id",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	now := time.Now()
	sale := models.ProductSale{
		ID:               primitive.NewObjectID(),
		CustomerID:       customerID,
		SalesmanID:       salesmanID,
		ProductName:      utils.SanitizeInput(req.ProductName),
		Price:            req.Price,
		PaymentMethod:    req.PaymentMethod,
		Installments:     req.Installments,
		RecoveryStatus:   models.RecoveryStatusCurrent,
		DeliveryStatus:   models.DeliveryStatusPending,
		CommissionStatus: models.CommissionStatusPending,
		SaleDate:         now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if req.PaymentMethod == models.PaymentMethodCash {
		sale.RecoveryStatus = models.RecoveryStatusCompleted
	}

	session, err := pc.DB.StartSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to start transaction",
		})
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var customer models.Customer
		if err := pc.customers().FindOne(sc, bson.M{"_id": customerID}).Decode(&customer); err != nil {
			return nil, utils.NewValidationError("customerId", "customer not found")
		}
		if !customer.TokenIsAvailable {
			return nil, utils.NewConflictError("token has already been used for a purchase")
		}

		result, err := pc.customers().UpdateOne(sc,
			bson.M{"_id": customerID, "tokenIsAvailable": true},
			bson.M{"$set": bson.M{"tokenIsAvailable": false, "updatedAt": now}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, utils.NewConflictError("token has already been used for a purchase")
		}

		if _, err := pc.sales().InsertOne(sc, sale); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		switch {
		case utils.IsValidation(err):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		case utils.IsConflict(err):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: err.Error(),
			})
		default:
			log.Printf("Failed to record product sale: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to record product sale",
			})
		}
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Product sale recorded successfully",
		Data:    sale,
	})
}

// ListProductSales returns product sales visible to the caller.
func (pc *ProductSaleController) ListProductSales(c echo.Context) error {
	role := middleware.ExtractRole(c)
	filter := bson.M{}

	if !role.CanResolveRequests() && role != models.RoleRecoveryOfficer {
		salesmanID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid token",
			})
		}
		filter["salesmanId"] = salesmanID
	}
	if role == models.RoleRecoveryOfficer {
		officerID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
		if err == nil {
			filter["recoveryOfficerId"] = officerID
		}
	}

	if status := c.QueryParam("commissionStatus"); status != "" {
		filter["commissionStatus"] = status
	}
	if status := c.QueryParam("recoveryStatus"); status != "" {
		filter["recoveryStatus"] = status
	}
	if status := c.QueryParam("deliveryStatus"); status != "" {
		filter["deliveryStatus"] = status
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := pc.sales().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "saleDate", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch product sales",
		})
	}
	defer cursor.Close(ctx)

	var results []models.ProductSale
	if err := cursor.All(ctx, &results); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode product sales",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Product sales retrieved successfully",
		Data:    results,
	})
}

// RecordInstallmentPayment records a monthly payment or a missed payment on
// an installment sale and updates the recovery status.
func (pc *ProductSaleController) RecordInstallmentPayment(c echo.Context) error {
	saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid sale id",
		})
	}

	var req models.InstallmentPaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	session, err := pc.DB.StartSession()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to start transaction",
		})
	}
	defer session.EndSession(ctx)

	var updated models.ProductSale
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var sale models.ProductSale
		if err := pc.sales().FindOne(sc, bson.M{"_id": saleID}).Decode(&sale); err != nil {
			return nil, utils.NewValidationError("id", "sale not found")
		}
		if sale.PaymentMethod != models.PaymentMethodInstallments {
			return nil, utils.NewValidationError("paymentMethod", "sale is not paid in installments")
		}
		if sale.RecoveryStatus == models.RecoveryStatusCompleted {
			return nil, utils.NewConflictError("all installments are already paid")
		}

		update := bson.M{"updatedAt": time.Now()}
		if req.Paid {
			sale.PaidInstallments++
			if sale.Arrears > 0 {
				sale.Arrears--
			}
		} else {
			sale.Arrears++
		}

		switch {
		case sale.PaidInstallments >= sale.Installments:
			sale.RecoveryStatus = models.RecoveryStatusCompleted
		case sale.Arrears >= 3:
			sale.RecoveryStatus = models.RecoveryStatusDefaulted
		case sale.Arrears > 0:
			sale.RecoveryStatus = models.RecoveryStatusArrears
		default:
			sale.RecoveryStatus = models.RecoveryStatusCurrent
		}

		update["paidInstallments"] = sale.PaidInstallments
		update["arrears"] = sale.Arrears
		update["recoveryStatus"] = sale.RecoveryStatus

		if _, err := pc.sales().UpdateOne(sc, bson.M{"_id": saleID}, bson.M{"$set": update}); err != nil {
			return nil, err
		}
		updated = sale
		return nil, nil
	})
	if err != nil {
		switch {
		case utils.IsValidation(err):
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			})
		case utils.IsConflict(err):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: err.Error(),
			})
		default:
			log.Printf("Failed to record installment payment: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to record installment payment",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Installment recorded successfully",
		Data:    updated,
	})
}

// UpdateDeliveryStatus moves a sale through the delivery pipeline. Delivery
// only starts after the commission has been approved.
func (pc *ProductSaleController) UpdateDeliveryStatus(c echo.Context) error {
	saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid sale id",
		})
	}

	var req struct {
		DeliveryStatus string `json:"deliveryStatus"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	switch req.DeliveryStatus {
	case models.DeliveryStatusPending, models.DeliveryStatusDelivered, models.DeliveryStatusReturned:
	default:
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown delivery status",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var sale models.ProductSale
	if err := pc.sales().FindOne(ctx, bson.M{"_id": saleID}).Decode(&sale); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Sale not found",
		})
	}
	if sale.CommissionStatus != models.CommissionStatusApproved {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Delivery requires an approved commission",
		})
	}

	_, err = pc.sales().UpdateOne(ctx,
		bson.M{"_id": saleID},
		bson.M{"$set": bson.M{"deliveryStatus": req.DeliveryStatus, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update delivery status",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Delivery status updated",
	})
}

// AssignRecoveryOfficer attaches a recovery officer to an installment sale.
func (pc *ProductSaleController) AssignRecoveryOfficer(c echo.Context) error {
	saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid sale id",
		})
	}

	var req struct {
		OfficerID string `json:"officerId"`
	}
	if err := c.Bind(&req); err != nil || req.OfficerID == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Officer id is required",
		})
	}
	officerID, err := primitive.ObjectIDFromHex(req.OfficerID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid officer id",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var officer models.User
	err = config.GetCollection(pc.DB, "users").FindOne(ctx, bson.M{"_id": officerID}).Decode(&officer)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Officer not found",
		})
	}
	if officer.Role != models.RoleRecoveryOfficer {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User is not a recovery officer",
		})
	}

	result, err := pc.sales().UpdateOne(ctx,
		bson.M{"_id": saleID, "paymentMethod": models.PaymentMethodInstallments},
		bson.M{"$set": bson.M{"recoveryOfficerId": officerID, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to assign recovery officer",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Installment sale not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Recovery officer assigned",
	})
}
