// models/product_sale.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment methods for product sales.
const (
	PaymentMethodCash         = "cash"
	PaymentMethodInstallments = "installments"
)

// Recovery status values for installment sales.
const (
	RecoveryStatusCurrent   = "current"
	RecoveryStatusArrears   = "arrears"
	RecoveryStatusCompleted = "completed"
	RecoveryStatusDefaulted = "defaulted"
)

// Delivery status values.
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusReturned  = "returned"
)

// ProductSale represents a product purchase that consumes a customer's token.
type ProductSale struct {
	ID                primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerID        primitive.ObjectID  `json:"customerId" bson:"customerId"`
	SalesmanID        primitive.ObjectID  `json:"salesmanId" bson:"salesmanId"`
	ProductName       string              `json:"productName" bson:"productName"`
	Price             float64             `json:"price" bson:"price"`
	PaymentMethod     string              `json:"paymentMethod" bson:"paymentMethod"` // "cash" or "installments"
	PaidInstallments  int                 `json:"paidInstallments" bson:"paidInstallments"`
	Installments      int                 `json:"installments" bson:"installments"`
	Arrears           int                 `json:"arrears" bson:"arrears"` // count of missed installment payments
	RecoveryStatus    string              `json:"recoveryStatus" bson:"recoveryStatus"`
	DeliveryStatus    string              `json:"deliveryStatus" bson:"deliveryStatus"`
	CommissionStatus  string              `json:"commissionStatus" bson:"commissionStatus"`
	RecoveryOfficerID *primitive.ObjectID `json:"recoveryOfficerId,omitempty" bson:"recoveryOfficerId,omitempty"`
	SaleDate          time.Time           `json:"saleDate" bson:"saleDate"`
	CreatedAt         time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// CreateProductSaleRequest is the payload for recording a product sale.
type CreateProductSaleRequest struct {
	CustomerID    string  `json:"customerId" validate:"required"`
	ProductName   string  `json:"productName" validate:"required"`
	Price         float64 `json:"price" validate:"required,gt=0"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,oneof=cash installments"`
	Installments  int     `json:"installments" validate:"gte=0"`
}

// InstallmentPaymentRequest records a monthly installment payment or a missed
// payment (arrear) against an installment sale.
type InstallmentPaymentRequest struct {
	Paid   bool   `json:"paid"`
	Remark string `json:"remark,omitempty"`
}
