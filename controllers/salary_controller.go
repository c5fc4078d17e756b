package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/utils"
	"github.com/distrohq/backoffice_backend/websocket"
)

type SalaryController struct {
	DB       *mongo.Client
	salaries *services.SalaryService
	hub      *websocket.Hub
}

func NewSalaryController(db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) *SalaryController {
	return &SalaryController{
		DB:       db,
		salaries: services.NewSalaryService(db, settings),
		hub:      hub,
	}
}

// ProcessSalaries runs the monthly payroll for the current period. At most
// one payout per period; a second run conflicts.
func (slc *SalaryController) ProcessSalaries(c echo.Context) error {
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := slc.salaries.ProcessSalaries(ctx, actorID)
	if err != nil {
		if utils.IsConflict(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: err.Error(),
			})
		}
		log.Printf("Payroll run failed: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Payroll run failed",
		})
	}

	slc.hub.NotifyPayoutProcessed(result)
	if summaryEmail := os.Getenv("PAYROLL_SUMMARY_EMAIL"); summaryEmail != "" {
		go utils.SendPayrollSummaryEmail(summaryEmail, *result)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payroll processed successfully",
		Data:    result,
	})
}

// ReverseSalaryPayout rolls back a payroll batch: its income records are
// removed and the balances restored.
func (slc *SalaryController) ReverseSalaryPayout(c echo.Context) error {
	batchID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid payout id",
		})
	}
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payout, err := slc.salaries.ReverseSalaryPayout(ctx, batchID, actorID)
	if err != nil {
		switch {
		case utils.IsValidation(err):
			return c.JSON(http.StatusNotFound, models.Response{
				Status:  http.StatusNotFound,
				Message: err.Error(),
			})
		case utils.IsConflict(err):
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: err.Error(),
			})
		default:
			log.Printf("Payout reversal failed: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Payout reversal failed",
			})
		}
	}

	slc.hub.NotifyPayoutProcessed(map[string]interface{}{
		"reversed": true,
		"payout":   payout,
	})

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payout reversed successfully",
		Data:    payout,
	})
}

// ListPayouts returns payroll batches, newest first.
func (slc *SalaryController) ListPayouts(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payouts, err := slc.salaries.ListPayouts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch payouts",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Payouts retrieved successfully",
		Data:    payouts,
	})
}
