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

	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/repositories"
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/utils"
	"github.com/distrohq/backoffice_backend/websocket"
)

type SettingsController struct {
	DB       *mongo.Client
	settings *services.SettingsService
	requests *services.ChangeRequestService
	users    *repositories.UserRepository
	hub      *websocket.Hub
}

func NewSettingsController(db *mongo.Client, settings *services.SettingsService, hub *websocket.Hub) *SettingsController {
	return &SettingsController{
		DB:       db,
		settings: settings,
		requests: services.NewChangeRequestService(db, settings),
		users:    repositories.NewUserRepository(db),
		hub:      hub,
	}
}

// bindSettingsPayload decodes the request body into the typed settings
// structure for the domain.
func bindSettingsPayload(c echo.Context, domain models.SettingsDomain) (interface{}, error) {
	switch domain {
	case models.DomainCommission:
		var payload models.CommissionSettings
		if err := c.Bind(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	case models.DomainProductCommission:
		var payload models.ProductCommissionSettings
		if err := c.Bind(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	case models.DomainIncentive:
		var payload models.IncentiveSettings
		if err := c.Bind(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	case models.DomainSalary:
		var payload models.SalarySettings
		if err := c.Bind(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	case models.DomainSignupRole:
		var payload models.SignupRoleSettings
		if err := c.Bind(&payload); err != nil {
			return nil, err
		}
		return payload, nil
	default:
		return nil, utils.NewValidationError("domain", "unknown settings domain")
	}
}

func (sc *SettingsController) loadActor(c echo.Context) (*models.User, error) {
	actorID, err := primitive.ObjectIDFromHex(middleware.GetUserIDFromToken(c))
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return sc.users.FindByID(ctx, actorID)
}

func respondWorkflowError(c echo.Context, err error, action string) error {
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
		log.Printf("Settings %s failed: %v", action, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Settings " + action + " failed",
		})
	}
}

// GetSettings returns the live settings document for a domain.
func (sc *SettingsController) GetSettings(c echo.Context) error {
	domain := models.SettingsDomain(c.Param("domain"))
	if !domain.IsValid() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown settings domain: " + string(domain),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, version, err := sc.settings.Raw(ctx, domain)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load settings",
		})
	}

	var doc bson.M
	if raw != nil {
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to decode settings",
			})
		}
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Settings retrieved successfully",
		Data: map[string]interface{}{
			"domain":   domain,
			"version":  version,
			"settings": doc,
		},
	})
}

// GetVisibleSignupRoles returns the roles offered on the staff signup form.
// Public, the signup page calls it before authentication.
func (sc *SettingsController) GetVisibleSignupRoles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	settings, err := sc.settings.SignupRoleSettings(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to load signup roles",
		})
	}

	roles := []models.Role{}
	if settings != nil {
		roles = settings.VisibleRoles
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Signup roles retrieved successfully",
		Data:    map[string]interface{}{"roles": roles},
	})
}

// SubmitSettingsChange proposes new settings for a domain. Super admins
// apply immediately; everyone else gets a pending change request.
func (sc *SettingsController) SubmitSettingsChange(c echo.Context) error {
	domain := models.SettingsDomain(c.Param("domain"))
	if !domain.IsValid() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown settings domain: " + string(domain),
		})
	}

	actor, err := sc.loadActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	payload, err := bindSettingsPayload(c, domain)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid settings payload",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	result, err := sc.requests.Submit(ctx, domain, *actor, payload)
	if err != nil {
		return respondWorkflowError(c, err, "submission")
	}

	if result.Applied {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Settings applied",
			Data:    result,
		})
	}

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Change request submitted for approval",
		Data:    result.Request,
	})
}

// ListPendingRequests returns every pending change request across domains.
func (sc *SettingsController) ListPendingRequests(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pending, err := sc.requests.PendingRequests(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch pending requests",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Pending requests retrieved successfully",
		Data:    pending,
	})
}

// GetRequestHistory returns resolved and pending requests for one domain.
func (sc *SettingsController) GetRequestHistory(c echo.Context) error {
	domain := models.SettingsDomain(c.Param("domain"))
	if !domain.IsValid() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown settings domain: " + string(domain),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	history, err := sc.requests.RequestHistory(ctx, domain)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch request history",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Request history retrieved successfully",
		Data:    history,
	})
}

// ApproveRequest applies a pending change request.
func (sc *SettingsController) ApproveRequest(c echo.Context) error {
	return sc.resolveRequest(c, true)
}

// RejectRequest discards a pending change request.
func (sc *SettingsController) RejectRequest(c echo.Context) error {
	return sc.resolveRequest(c, false)
}

func (sc *SettingsController) resolveRequest(c echo.Context, approve bool) error {
	requestID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request id",
		})
	}

	resolver, err := sc.loadActor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var request *models.ChangeRequest
	action := "rejection"
	if approve {
		action = "approval"
		request, err = sc.requests.Approve(ctx, requestID, *resolver)
	} else {
		request, err = sc.requests.Reject(ctx, requestID, *resolver)
	}
	if err != nil {
		return respondWorkflowError(c, err, action)
	}

	go utils.NotifyRequestResolved(sc.DB, *request)
	sc.hub.NotifyRequestResolved(request.RequestedByID, request)

	message := "Change request rejected"
	if approve {
		message = "Change request approved and applied"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: message,
		Data:    request,
	})
}
