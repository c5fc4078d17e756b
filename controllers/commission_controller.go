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
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/utils"
	"github.com/distrohq/backoffice_backend/websocket"
)

type CommissionController struct {
	DB          *mongo.Client
	commissions *services.CommissionService
	hub         *websocket.Hub
}

func NewCommissionController(db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) *CommissionController {
	return &CommissionController{
		DB:          db,
		commissions: services.NewCommissionService(db, settings),
		hub:         hub,
	}
}

func (cc *CommissionController) respondResolutionError(c echo.Context, err error, action string) error {
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
		log.Printf("Failed to %s commission: %v", action, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to " + action + " commission",
		})
	}
}

// notifyRecipients pushes a live event and a push notification for every
// income record just written.
func (cc *CommissionController) notifyRecipients(records []models.IncomeRecord) {
	for _, record := range records {
		cc.hub.NotifyIncomeRecorded(record.UserID, record)
		go func(r models.IncomeRecord) {
			err := utils.SendFCMNotification(cc.DB, r.UserID, "Commission received",
				"A commission has been credited to your account", map[string]string{
					"sourceType": r.SourceType,
				})
			if err != nil {
				log.Printf("Failed to push commission notification: %v", err)
			}
		}(record)
	}
}

// ApproveTokenCommission approves a pending token sale and distributes the
// commission across the salesman's upline.
func (cc *CommissionController) ApproveTokenCommission(c echo.Context) error {
	customerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer id",
		})
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	records, err := cc.commissions.ApproveTokenCommission(ctx, customerID, actorID)
	if err != nil {
		return cc.respondResolutionError(c, err, "approve")
	}

	cc.notifyRecipients(records)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission approved and distributed",
		Data: map[string]interface{}{
			"recordCount": len(records),
			"records":     records,
		},
	})
}

// RejectTokenCommission rejects a pending token sale; no income is written.
func (cc *CommissionController) RejectTokenCommission(c echo.Context) error {
	customerID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid customer id",
		})
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := cc.commissions.RejectTokenCommission(ctx, customerID, actorID); err != nil {
		return cc.respondResolutionError(c, err, "reject")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rejected",
	})
}

// ApproveProductCommission approves a pending product sale commission using
// the tiered product rates.
func (cc *CommissionController) ApproveProductCommission(c echo.Context) error {
	saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid sale id",
		})
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	records, err := cc.commissions.ApproveProductCommission(ctx, saleID, actorID)
	if err != nil {
		return cc.respondResolutionError(c, err, "approve")
	}

	cc.notifyRecipients(records)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission approved and distributed",
		Data: map[string]interface{}{
			"recordCount": len(records),
			"records":     records,
		},
	})
}

// RejectProductCommission rejects a pending product sale commission.
func (cc *CommissionController) RejectProductCommission(c echo.Context) error {
	saleID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid sale id",
		})
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := cc.commissions.RejectProductCommission(ctx, saleID, actorID); err != nil {
		return cc.respondResolutionError(c, err, "reject")
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Commission rejected",
	})
}

// ListMyIncome returns the caller's income ledger, newest first. Supports
// optional sourceType and period filters.
func (cc *CommissionController) ListMyIncome(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	filter := bson.M{"userId": userID}
	if source := c.QueryParam("sourceType"); source != "" {
		filter["sourceType"] = source
	}
	if period := c.QueryParam("period"); period != "" {
		from, err := time.Parse("2006-01", period)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Period must look like 2026-01",
			})
		}
		filter["saleDate"] = bson.M{"$gte": from, "$lt": from.AddDate(0, 1, 0)}
	}
	minAmount, err := utils.ParseFloat(c.QueryParam("minAmount"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid minAmount",
		})
	}
	if minAmount > 0 {
		filter["amount"] = bson.M{"$gte": minAmount}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := config.GetCollection(cc.DB, "incomeRecords").Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "saleDate", Value: -1}}).SetLimit(500))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch income records",
		})
	}
	defer cursor.Close(ctx)

	var records []models.IncomeRecord
	if err := cursor.All(ctx, &records); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode income records",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Income records retrieved successfully",
		Data:    records,
	})
}

// GetIncomeSummary aggregates the caller's income by source type.
func (cc *CommissionController) GetIncomeSummary(c echo.Context) error {
	userID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"userId": userID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$sourceType",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := config.GetCollection(cc.DB, "incomeRecords").Aggregate(ctx, pipeline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to aggregate income",
		})
	}
	defer cursor.Close(ctx)

	var rows []struct {
		SourceType string  `bson:"_id"`
		Total      float64 `bson:"total"`
		Count      int     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode income summary",
		})
	}

	summary := models.IncomeSummary{UserID: userID}
	for _, row := range rows {
		summary.Total += row.Total
		summary.Records += row.Count
		switch row.SourceType {
		case models.IncomeSourceTokenSale:
			summary.TokenSales = row.Total
		case models.IncomeSourceProductSale:
			summary.ProductSale = row.Total
		case models.IncomeSourceSalary:
			summary.Salary = row.Total
		case models.IncomeSourceAdhoc:
			summary.Adhoc = row.Total
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Income summary retrieved successfully",
		Data:    summary,
	})
}
