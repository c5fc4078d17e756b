package controllers

import (
	"context"
	"log"
	"net/http"
	"strconv"
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

type CustomerController struct {
	DB *mongo.Client
}

func NewCustomerController(db *mongo.Client) *CustomerController {
	return &CustomerController{DB: db}
}

func (cc *CustomerController) collection() *mongo.Collection {
	return config.GetCollection(cc.DB, "customers")
}

// CreateCustomer registers a token sale for the authenticated salesman. The
// commission stays pending until an authorized resolver approves it.
func (cc *CustomerController) CreateCustomer(c echo.Context) error {
	salesmanID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req models.CreateCustomerRequest
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
	if err := utils.ValidateTokenSerial(req.TokenSerial); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: err.Error(),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := cc.collection().CountDocuments(ctx, bson.M{"tokenSerial": req.TokenSerial})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check token serial",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Token serial is already registered",
		})
	}

	now := time.Now()
	customer := models.Customer{
		ID:                 primitive.NewObjectID(),
		FullName:           utils.SanitizeInput(req.FullName),
		Phone:              utils.SanitizeInput(req.Phone),
		Address:            utils.SanitizeInput(req.Address),
		TokenSerial:        req.TokenSerial,
		TokenIsAvailable:   true,
		SalesmanID:         salesmanID,
		SaleDate:           now,
		CommissionStatus:   models.CommissionStatusPending,
		TotalValue:         req.TotalValue,
		DiscountValue:      req.DiscountValue,
		DownPayment:        req.DownPayment,
		Installments:       req.Installments,
		MonthlyInstallment: req.MonthlyInstallment,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := cc.collection().InsertOne(ctx, customer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Token serial is already registered",
			})
		}
		log.Printf("Failed to register customer: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to register customer",
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Customer registered successfully",
		Data:    customer,
	})
}

// ListCustomers returns customers visible to the caller. Salesmen see their
// own registrations; resolvers see everything, optionally filtered.
func (cc *CustomerController) ListCustomers(c echo.Context) error {
	role := middleware.ExtractRole(c)
	filter := bson.M{}

	if !role.CanResolveRequests() {
		salesmanID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, models.Response{
				Status:  http.StatusUnauthorized,
				Message: "Invalid token",
			})
		}
		filter["salesmanId"] = salesmanID
	} else if sid := c.QueryParam("salesmanId"); sid != "" {
		salesmanID, err := primitive.ObjectIDFromHex(sid)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid salesman id",
			})
		}
		filter["salesmanId"] = salesmanID
	}

	if status := c.QueryParam("commissionStatus"); status != "" {
		filter["commissionStatus"] = status
	}
	if avail := c.QueryParam("tokenAvailable"); avail != "" {
		filter["tokenIsAvailable"] = avail == "true"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := cc.collection().Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "saleDate", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch customers",
		})
	}
	defer cursor.Close(ctx)

	var customers []models.Customer
	if err := cursor.All(ctx, &customers); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode customers",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Customers retrieved successfully",
		Data:    customers,
	})
}

// GetCustomer returns a single customer record.
func (cc *CustomerController) GetCustomer(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer id",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var customer models.Customer
	if err := cc.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&customer); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Customer not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Customer retrieved successfully",
		Data:    customer,
	})
}

// GetTokenBarcode renders the customer's token serial as a Code 128 PNG,
// used on printed sale receipts.
func (cc *CustomerController) GetTokenBarcode(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer id",
		})
	}

	width := 300
	height := 100
	if w := c.QueryParam("width"); w != "" {
		if parsed, err := strconv.Atoi(w); err == nil && parsed >= 100 && parsed <= 1200 {
			width = parsed
		}
	}
	if h := c.QueryParam("height"); h != "" {
		if parsed, err := strconv.Atoi(h); err == nil && parsed >= 40 && parsed <= 400 {
			height = parsed
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var customer models.Customer
	if err := cc.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&customer); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "Customer not found",
		})
	}

	png, err := utils.GenerateTokenBarcode(customer.TokenSerial, width, height)
	if err != nil {
		log.Printf("Failed to render barcode for %s: %v", customer.TokenSerial, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to render barcode",
		})
	}

	return c.Blob(http.StatusOK, "image/png", png)
}
