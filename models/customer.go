// models/customer.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Commission status values shared by customers and product sales.
const (
	CommissionStatusPending  = "pending"
	CommissionStatusApproved = "approved"
	CommissionStatusRejected = "rejected"
)

// Customer represents a token registration. The token reserves a future
// product purchase; tokenIsAvailable flips to false once a product sale
// consumes it.
type Customer struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FullName         string             `json:"fullName" bson:"fullName"`
	Phone            string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address          string             `json:"address,omitempty" bson:"address,omitempty"`
	TokenSerial      string             `json:"tokenSerial" bson:"tokenSerial"`
	TokenIsAvailable bool               `json:"tokenIsAvailable" bson:"tokenIsAvailable"`
	SalesmanID       primitive.ObjectID `json:"salesmanId" bson:"salesmanId"`
	SaleDate         time.Time          `json:"saleDate" bson:"saleDate"`
	CommissionStatus string             `json:"commissionStatus" bson:"commissionStatus"`

	// Purchase plan agreed at registration time.
	TotalValue         float64 `json:"totalValue" bson:"totalValue"`
	DiscountValue      float64 `json:"discountValue" bson:"discountValue"`
	DownPayment        float64 `json:"downPayment" bson:"downPayment"`
	Installments       int     `json:"installments" bson:"installments"`
	MonthlyInstallment float64 `json:"monthlyInstallment" bson:"monthlyInstallment"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// CreateCustomerRequest is the token registration payload.
type CreateCustomerRequest struct {
	FullName           string  `json:"fullName" validate:"required"`
	Phone              string  `json:"phone,omitempty"`
	Address            string  `json:"address,omitempty"`
	TokenSerial        string  `json:"tokenSerial" validate:"required"`
	TotalValue         float64 `json:"totalValue" validate:"gte=0"`
	DiscountValue      float64 `json:"discountValue" validate:"gte=0"`
	DownPayment        float64 `json:"downPayment" validate:"gte=0"`
	Installments       int     `json:"installments" validate:"gte=0"`
	MonthlyInstallment float64 `json:"monthlyInstallment" validate:"gte=0"`
}
