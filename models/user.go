// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User model
type User struct {
	ID                 primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Email              string               `json:"email" bson:"email"`
	Password           string               `json:"password,omitempty" bson:"password"`
	FullName           string               `json:"fullName" bson:"fullName"`
	Phone              string               `json:"phone,omitempty" bson:"phone,omitempty"`
	Role               Role                 `json:"role" bson:"role"`
	ReferrerID         *primitive.ObjectID  `json:"referrerId,omitempty" bson:"referrerId,omitempty"`
	AssignedManagerIDs []primitive.ObjectID `json:"assignedManagerIds,omitempty" bson:"assignedManagerIds,omitempty"`
	Branch             string               `json:"branch,omitempty" bson:"branch,omitempty"`
	SalesmanStage      string               `json:"salesmanStage,omitempty" bson:"salesmanStage,omitempty"` // "junior" or "senior", salesman role only
	TotalIncome        float64              `json:"totalIncome" bson:"totalIncome"`
	ReferralCode       string               `json:"referralCode,omitempty" bson:"referralCode,omitempty"`
	OTPInfo            *OTPInfo             `json:"otpInfo,omitempty" bson:"otpInfo,omitempty"`
	PhoneVerified      bool                 `json:"phoneVerified,omitempty" bson:"phoneVerified,omitempty"`
	FCMToken           string               `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	IsDisabled         bool                 `json:"isDisabled" bson:"isDisabled"`
	LastActivityAt     time.Time            `json:"lastActivityAt" bson:"lastActivityAt"`
	CreatedAt          time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time            `json:"updatedAt" bson:"updatedAt"`
}

type OTPInfo struct {
	OTP       string    `json:"otp" bson:"otp"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// LoginRequest is the email/password login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProviderLoginRequest carries an identity token issued by the external auth
// provider, verified against the provider's JWK set.
type ProviderLoginRequest struct {
	IdentityToken string `json:"identityToken" validate:"required"`
}

// LoginResponse is returned on successful authentication.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// CreateUserRequest is the payload for creating a staff member.
type CreateUserRequest struct {
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required,min=8"`
	FullName      string   `json:"fullName" validate:"required"`
	Phone         string   `json:"phone" validate:"required"`
	Role          Role     `json:"role" validate:"required"`
	ReferrerID    string   `json:"referrerId,omitempty"`
	ManagerIDs    []string `json:"managerIds,omitempty"`
	Branch        string   `json:"branch,omitempty"`
	SalesmanStage string   `json:"salesmanStage,omitempty"`
}

// UpdateUserRequest carries the mutable user fields.
type UpdateUserRequest struct {
	FullName      string   `json:"fullName,omitempty"`
	Phone         string   `json:"phone,omitempty"`
	Branch        string   `json:"branch,omitempty"`
	ReferrerID    string   `json:"referrerId,omitempty"`
	ManagerIDs    []string `json:"managerIds,omitempty"`
	SalesmanStage string   `json:"salesmanStage,omitempty"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
