package controllers

import (
	"context"
	"log"
	"net/http"
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

type IncentiveController struct {
	DB         *mongo.Client
	incentives *services.IncentiveService
	hub        *websocket.Hub
}

func NewIncentiveController(db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) *IncentiveController {
	return &IncentiveController{
		DB:         db,
		incentives: services.NewIncentiveService(db, settings),
		hub:        hub,
	}
}

// AwardIncentive evaluates a user's approved sales for a period against the
// incentive ladder for their role and stage, and credits the matched amount.
// Awarding the same user twice for one period conflicts.
func (ic *IncentiveController) AwardIncentive(c echo.Context) error {
	var req struct {
		UserID string `json:"userId"`
		Period string `json:"period"`
	}
	if err := c.Bind(&req); err != nil || req.UserID == "" || req.Period == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "User id and period are required",
		})
	}

	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user id",
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

	award, err := ic.incentives.AwardIncentive(ctx, userID, req.Period, actorID)
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
			log.Printf("Incentive award failed: %v", err)
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Incentive award failed",
			})
		}
	}

	if award.Amount > 0 {
		ic.hub.NotifyIncomeRecorded(userID, award)
		go func() {
			err := utils.SendFCMNotification(ic.DB, userID, "Incentive awarded",
				"A monthly incentive has been credited to your account", map[string]string{
					"period": req.Period,
				})
			if err != nil {
				log.Printf("Failed to push incentive notification: %v", err)
			}
		}()
	}

	message := "Incentive awarded"
	if award.Amount == 0 {
		message = "No incentive target reached for the period"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    award,
	})
}
