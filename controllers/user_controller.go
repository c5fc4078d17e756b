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
	"github.com/distrohq/backoffice_backend/repositories"
	"github.com/distrohq/backoffice_backend/utils"
)

type UserController struct {
	DB    *mongo.Client
	users *repositories.UserRepository
}

func NewUserController(db *mongo.Client) *UserController {
	return &UserController{
		DB:    db,
		users: repositories.NewUserRepository(db),
	}
}

func (uc *UserController) collection() *mongo.Collection {
	return config.GetCollection(uc.DB, "users")
}

// CreateUser registers a staff member with one of the staff roles.
func (uc *UserController) CreateUser(c echo.Context) error {
	var req models.CreateUserRequest
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

	if !req.Role.IsValid() {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Unknown role: " + string(req.Role),
		})
	}
	if req.Role == models.RoleSalesman && req.SalesmanStage == "" {
		req.SalesmanStage = models.SalesmanStageJunior
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid email address",
		})
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid phone number",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := uc.collection().CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check existing users",
		})
	}
	if count > 0 {
		return c.JSON(http.StatusConflict, models.Response{
			Status:  http.StatusConflict,
			Message: "Email is already registered",
		})
	}

	var referrerID *primitive.ObjectID
	if req.ReferrerID != "" {
		id, err := primitive.ObjectIDFromHex(req.ReferrerID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid referrer id",
			})
		}
		referrer, err := uc.users.FindByID(ctx, id)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Referrer not found",
			})
		}
		if referrer.IsDisabled {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Referrer account is disabled",
			})
		}
		referrerID = &id
	}

	managerIDs := make([]primitive.ObjectID, 0, len(req.ManagerIDs))
	for _, m := range req.ManagerIDs {
		id, err := primitive.ObjectIDFromHex(m)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid manager id: " + m,
			})
		}
		managerIDs = append(managerIDs, id)
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to secure password",
		})
	}

	referralCode, err := utils.GenerateReferralCode(req.Role)
	if err != nil {
		log.Printf("Failed to generate referral code: %v", err)
	}

	now := time.Now()
	user := models.User{
		ID:                 primitive.NewObjectID(),
		Email:              email,
		Password:           hashed,
		FullName:           utils.SanitizeInput(req.FullName),
		Phone:              phone,
		Role:               req.Role,
		ReferrerID:         referrerID,
		AssignedManagerIDs: managerIDs,
		Branch:             utils.SanitizeInput(req.Branch),
		SalesmanStage:      req.SalesmanStage,
		ReferralCode:       referralCode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if _, err := uc.collection().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return c.JSON(http.StatusConflict, models.Response{
				Status:  http.StatusConflict,
				Message: "Email is already registered",
			})
		}
		log.Printf("Failed to create user: %v", err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to create user",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "User created successfully",
		Data:    user,
	})
}

// GetUser returns a single user by id.
func (uc *UserController) GetUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user id",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User retrieved successfully",
		Data:    user,
	})
}

// ListUsers returns staff accounts, optionally filtered by role or branch.
func (uc *UserController) ListUsers(c echo.Context) error {
	filter := bson.M{}
	if role := c.QueryParam("role"); role != "" {
		if !models.Role(role).IsValid() {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Unknown role: " + role,
			})
		}
		filter["role"] = role
	}
	if branch := c.QueryParam("branch"); branch != "" {
		filter["branch"] = branch
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := uc.collection().Find(ctx, filter,
		options.Find().SetProjection(bson.M{"password": 0, "otpInfo": 0}).SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch users",
		})
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode users",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Users retrieved successfully",
		Data:    users,
	})
}

// UpdateUser edits the mutable profile fields of a staff account.
func (uc *UserController) UpdateUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user id",
		})
	}

	var req models.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	update := bson.M{"updatedAt": time.Now()}
	if req.FullName != "" {
		update["fullName"] = utils.SanitizeInput(req.FullName)
	}
	if req.Phone != "" {
		phone, err := utils.SanitizePhone(req.Phone)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid phone number",
			})
		}
		update["phone"] = phone
		update["phoneVerified"] = false
	}
	if req.Branch != "" {
		update["branch"] = utils.SanitizeInput(req.Branch)
	}
	if req.SalesmanStage != "" {
		if req.SalesmanStage != models.SalesmanStageJunior && req.SalesmanStage != models.SalesmanStageSenior {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Salesman stage must be junior or senior",
			})
		}
		update["salesmanStage"] = req.SalesmanStage
	}
	if req.ReferrerID != "" {
		refID, err := primitive.ObjectIDFromHex(req.ReferrerID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid referrer id",
			})
		}
		if refID == id {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "A user cannot refer themselves",
			})
		}
		update["referrerId"] = refID
	}
	if len(req.ManagerIDs) > 0 {
		managerIDs := make([]primitive.ObjectID, 0, len(req.ManagerIDs))
		for _, m := range req.ManagerIDs {
			mid, err := primitive.ObjectIDFromHex(m)
			if err != nil {
				return c.JSON(http.StatusBadRequest, models.Response{
					Status:  http.StatusBadRequest,
					Message: "Invalid manager id: " + m,
				})
			}
			managerIDs = append(managerIDs, mid)
		}
		update["assignedManagerIds"] = managerIDs
	}

	result, err := uc.collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update user",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "User updated successfully",
	})
}

// SetUserDisabled toggles the account lock without deleting history.
func (uc *UserController) SetUserDisabled(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user id",
		})
	}

	var req struct {
		Disabled bool `json:"disabled"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}

	actorID := middleware.GetUserIDFromToken(c)
	if actorID == id.Hex() && req.Disabled {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "You cannot disable your own account",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := uc.collection().UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isDisabled": req.Disabled, "updatedAt": time.Now()}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update account status",
		})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	msg := "Account enabled"
	if req.Disabled {
		msg = "Account disabled"
	}
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: msg,
	})
}

// GetTeam returns every user reachable downward from the given user through
// referral and manager-assignment links.
func (uc *UserController) GetTeam(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user id",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if _, err := uc.users.FindByID(ctx, id); err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	allUsers, err := uc.users.All(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch users",
		})
	}

	downline := utils.ResolveDownline(id, allUsers)
	for i := range downline.Users {
		downline.Users[i].Password = ""
		downline.Users[i].OTPInfo = nil
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Team retrieved successfully",
		Data: map[string]interface{}{
			"count":   len(downline.Users),
			"members": downline.Users,
		},
	})
}

// GetProfile returns the authenticated user's own record.
func (uc *UserController) GetProfile(c echo.Context) error {
	userID := middleware.GetUserIDFromToken(c)
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := uc.users.FindByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, models.Response{
			Status:  http.StatusNotFound,
			Message: "User not found",
		})
	}

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Profile retrieved successfully",
		Data:    user,
	})
}
