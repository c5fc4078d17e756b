package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/distrohq/backoffice_backend/config"
	"github.com/distrohq/backoffice_backend/middleware"
	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/repositories"
	"github.com/distrohq/backoffice_backend/services"
	"github.com/distrohq/backoffice_backend/utils"
)

type AuthController struct {
	DB       *mongo.Client
	users    *repositories.UserRepository
	identity *services.IdentityService
}

func NewAuthController(db *mongo.Client) *AuthController {
	return &AuthController{
		DB:       db,
		users:    repositories.NewUserRepository(db),
		identity: services.NewIdentityService(),
	}
}

func (ac *AuthController) usersCollection() *mongo.Collection {
	return config.GetCollection(ac.DB, "users")
}

// Login authenticates by email and password and issues a JWT pair.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil || req.Password == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Email and password are required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := ac.users.FindByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	if user.IsDisabled {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is disabled",
		})
	}

	if err := utils.CheckPassword(user.Password, req.Password); err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid email or password",
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		log.Printf("Failed to generate tokens for %s: %v", user.Email, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate tokens",
		})
	}

	go ac.touchLastActivity(user.ID)

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.LoginResponse{
			Token:        accessToken,
			RefreshToken: refreshToken,
			User:         *user,
		},
	})
}

// ProviderLogin accepts an identity token from the configured OIDC provider,
// verifies it, and signs in the matching account.
func (ac *AuthController) ProviderLogin(c echo.Context) error {
	var req models.ProviderLoginRequest
	if err := c.Bind(&req); err != nil || req.IdentityToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Identity token is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	claims, err := ac.identity.VerifyIdentityToken(ctx, req.IdentityToken)
	if err != nil {
		log.Printf("Identity token verification failed: %v", err)
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid identity token",
		})
	}

	email, err := utils.SanitizeEmail(claims.Email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Identity token carries no usable email",
		})
	}

	user, err := ac.users.FindByEmail(ctx, email)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "No account registered for this identity",
		})
	}
	if user.IsDisabled {
		return c.JSON(http.StatusForbidden, models.Response{
			Status:  http.StatusForbidden,
			Message: "Account is disabled",
		})
	}

	accessToken, refreshToken, err := middleware.GenerateJWT(user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate tokens",
		})
	}

	go ac.touchLastActivity(user.ID)

	user.Password = ""
	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data: models.LoginResponse{
			Token:        accessToken,
			RefreshToken: refreshToken,
			User:         *user,
		},
	})
}

// Logout blacklists the presented token until it expires on its own.
func (ac *AuthController) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "No token provided",
		})
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	expiry := time.Now().Add(72 * time.Hour)
	if claims := middleware.GetUserFromToken(c); claims != nil && claims.ExpiresAt > 0 {
		expiry = time.Unix(claims.ExpiresAt, 0)
	}
	middleware.BlacklistToken(token, expiry)

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Logged out successfully",
	})
}

// ValidateSession lets the frontend check whether a stored token is still
// usable without triggering the 401 handling of the JWT middleware.
func (ac *AuthController) ValidateSession(c echo.Context) error {
	authHeader := c.Request().Header.Get("Authorization")
	token := strings.TrimPrefix(authHeader, "Bearer ")

	if middleware.IsTokenBlacklisted(token) {
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "Token validation result",
			Data:    utils.ValidateTokenResponse{Valid: false, Message: "Token has been invalidated"},
		})
	}

	result, err := utils.ValidateToken(token, ac.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to validate token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Token validation result",
		Data:    result,
	})
}

// SendStaffOTP sends a phone verification code to a staff account that has
// not yet confirmed its number. Rate limited per phone via Redis.
func (ac *AuthController) SendStaffOTP(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil || phone == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "A valid phone number is required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cache := config.GetRedisClient(); cache != nil {
		if err := utils.ValidateOTPAttempts(phone, cache); err != nil {
			return c.JSON(http.StatusTooManyRequests, models.Response{
				Status:  http.StatusTooManyRequests,
				Message: "Too many verification attempts, try again later",
			})
		}
	}

	var user models.User
	err = ac.usersCollection().FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		// Do not reveal whether the phone exists.
		return c.JSON(http.StatusOK, models.Response{
			Status:  http.StatusOK,
			Message: "If the phone number is registered, a code has been sent",
		})
	}

	otp, err := utils.GenerateSecureOTP()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to generate verification code",
		})
	}

	expiry := time.Now().Add(10 * time.Minute)
	_, err = ac.usersCollection().UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{"$set": bson.M{
			"otpInfo":   models.OTPInfo{OTP: otp, ExpiresAt: expiry},
			"updatedAt": time.Now(),
		}},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to store verification code",
		})
	}

	if err := utils.SendOTPViaSMS(phone, otp); err != nil {
		log.Printf("Failed to send OTP SMS to %s: %v", phone, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send verification code",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "If the phone number is registered, a code has been sent",
	})
}

// VerifyStaffOTP confirms the code and marks the phone verified.
func (ac *AuthController) VerifyStaffOTP(c echo.Context) error {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request data",
		})
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil || phone == "" || req.OTP == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Phone and code are required",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = ac.usersCollection().FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid code",
		})
	}

	if user.OTPInfo == nil || user.OTPInfo.OTP != req.OTP || time.Now().After(user.OTPInfo.ExpiresAt) {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid or expired code",
		})
	}

	_, err = ac.usersCollection().UpdateOne(ctx,
		bson.M{"_id": user.ID},
		bson.M{
			"$set":   bson.M{"phoneVerified": true, "updatedAt": time.Now()},
			"$unset": bson.M{"otpInfo": ""},
		},
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to update verification status",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Phone number verified",
	})
}

// RegisterFCMToken stores the caller's device token for push notifications.
func (ac *AuthController) RegisterFCMToken(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid token",
		})
	}

	var req struct {
		FCMToken string `json:"fcmToken"`
	}
	if err := c.Bind(&req); err != nil || req.FCMToken == "" {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Device token is required",
		})
	}

	if err := ac.users.UpdateFCMToken(userID, req.FCMToken); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to register device token",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Device token registered",
	})
}

func (ac *AuthController) touchLastActivity(userID primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := ac.usersCollection().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"lastActivityAt": time.Now()}},
	)
	if err != nil {
		log.Printf("Failed to update last activity for %s: %v", userID.Hex(), err)
	}
}
