package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/models"
)

const dashboardCacheKey = "dashboard:summary"
const dashboardCacheTTL = 60 * time.Second

type DashboardController struct {
	DB    *mongo.Client
	cache *redis.Client
}

func NewDashboardController(db *mongo.Client, cache *redis.Client) *DashboardController {
	return &DashboardController{DB: db, cache: cache}
}

// DashboardSummary is the back-office landing page snapshot.
type DashboardSummary struct {
	PendingTokenCommissions   int64   `json:"pendingTokenCommissions"`
	PendingProductCommissions int64   `json:"pendingProductCommissions"`
	PendingChangeRequests     int64   `json:"pendingChangeRequests"`
	TokenSalesThisMonth       int64   `json:"tokenSalesThisMonth"`
	ProductSalesThisMonth     int64   `json:"productSalesThisMonth"`
	IncomeDistributedMonth    float64 `json:"incomeDistributedThisMonth"`
	ActiveStaff               int64   `json:"activeStaff"`
	SalesInArrears            int64   `json:"salesInArrears"`
	GeneratedAt               string  `json:"generatedAt"`
}

// GetSummary returns the aggregate dashboard counters. The snapshot is
// cached in Redis for a minute to keep the landing page cheap.
func (dc *DashboardController) GetSummary(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if dc.cache != nil {
		if cached, err := dc.cache.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var summary DashboardSummary
			if json.Unmarshal([]byte(cached), &summary) == nil {
				return c.JSON(http.StatusOK, models.Response{
					Status:  http.StatusOK,
					Message: "Dashboard summary retrieved successfully",
					Data:    summary,
				})
			}
		}
	}

	summary, err := dc.buildSummary(ctx)
	if err != nil {
		log.Printf("Failed to build dashboard summary: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to build dashboard summary",
		})
	}

	if dc.cache != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			if err := dc.cache.Set(ctx, dashboardCacheKey, encoded, dashboardCacheTTL).Err(); err != nil {
				log.Printf("Failed to cache dashboard summary: %v", err)
			}
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Dashboard summary retrieved successfully",
		Data:    summary,
	})
}

func (dc *DashboardController) buildSummary(ctx context.Context) (*DashboardSummary, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	customers := config.GetCollection(dc.DB, "customers")
	sales := config.GetCollection(dc.DB, "productSales")
	requests := config.GetCollection(dc.DB, "changeRequests")
	users := config.GetCollection(dc.DB, "users")
	income := config.GetCollection(dc.DB, "incomeRecords")

	summary := &DashboardSummary{GeneratedAt: now.Format(time.RFC3339)}
	var err error

	summary.PendingTokenCommissions, err = customers.CountDocuments(ctx,
		bson.M{"commissionStatus": models.CommissionStatusPending})
	if err != nil {
		return nil, err
	}

	summary.PendingProductCommissions, err = sales.CountDocuments(ctx,
		bson.M{"commissionStatus": models.CommissionStatusPending})
	if err != nil {
		return nil, err
	}

	summary.PendingChangeRequests, err = requests.CountDocuments(ctx,
		bson.M{"status": models.RequestStatusPending})
	if err != nil {
		return nil, err
	}

	summary.TokenSalesThisMonth, err = customers.CountDocuments(ctx,
		bson.M{"saleDate": bson.M{"$gte": monthStart}})
	if err != nil {
		return nil, err
	}

	summary.ProductSalesThisMonth, err = sales.CountDocuments(ctx,
		bson.M{"saleDate": bson.M{"$gte": monthStart}})
	if err != nil {
		return nil, err
	}

	summary.SalesInArrears, err = sales.CountDocuments(ctx,
		bson.M{"recoveryStatus": bson.M{"$in": []string{
			models.RecoveryStatusArrears, models.RecoveryStatusDefaulted,
		}}})
	if err != nil {
		return nil, err
	}

	summary.ActiveStaff, err = users.CountDocuments(ctx, bson.M{"isDisabled": false})
	if err != nil {
		return nil, err
	}

	cursor, err := income.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"saleDate": bson.M{"$gte": monthStart}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amount"},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var totals []struct {
		Total float64 `bson:"total"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		summary.IncomeDistributedMonth = totals[0].Total
	}

	return summary, nil
}

// InvalidateSummary drops the cached snapshot; used by tests and by
// operations that would otherwise leave the counters stale for a minute.
func (dc *DashboardController) InvalidateSummary(ctx context.Context) {
	if dc.cache == nil {
		return
	}
	if err := dc.cache.Del(ctx, dashboardCacheKey).Err(); err != nil && err != redis.Nil {
		log.Printf("Failed to invalidate dashboard cache: %v", err)
	}
}
