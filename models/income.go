// models/income.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Income source types.
const (
	IncomeSourceTokenSale   = "token_sale"
	IncomeSourceProductSale = "product_sale"
	IncomeSourceSalary      = "salary"
	IncomeSourceAdhoc       = "adhoc"
)

// IncomeRecord is an immutable ledger entry. Records are only ever inserted
// (by commission distribution, payroll, or approved ad-hoc payments) and only
// removed as a whole batch during payout reversal.
type IncomeRecord struct {
	ID         primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	UserID     primitive.ObjectID  `json:"userId" bson:"userId"`
	Amount     float64             `json:"amount" bson:"amount"`
	SourceType string              `json:"sourceType" bson:"sourceType"`
	SaleDate   time.Time           `json:"saleDate" bson:"saleDate"`
	CustomerID *primitive.ObjectID `json:"customerId,omitempty" bson:"customerId,omitempty"`
	SaleID     *primitive.ObjectID `json:"saleId,omitempty" bson:"saleId,omitempty"`
	PayoutID   string              `json:"payoutId,omitempty" bson:"payoutId,omitempty"` // salary batch id
	Note       string              `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt  time.Time           `json:"createdAt" bson:"createdAt"`
}

// MonthlySalaryPayout summarizes one payroll run. Period is "YYYY-MM"; a
// unique index on period (for non-reversed batches) prevents double-paying
// the same month.
type MonthlySalaryPayout struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PayoutID        string             `json:"payoutId" bson:"payoutId"` // uuid shared with the batch's income records
	Period          string             `json:"period" bson:"period"`
	ProcessedBy     primitive.ObjectID `json:"processedBy" bson:"processedBy"`
	TotalUsersPaid  int                `json:"totalUsersPaid" bson:"totalUsersPaid"`
	TotalAmountPaid float64            `json:"totalAmountPaid" bson:"totalAmountPaid"`
	PayoutDate      time.Time          `json:"payoutDate" bson:"payoutDate"`
	IsReversed      bool               `json:"isReversed" bson:"isReversed"`
	ReversedBy      primitive.ObjectID `json:"reversedBy,omitempty" bson:"reversedBy,omitempty"`
	ReversedAt      *time.Time         `json:"reversedAt,omitempty" bson:"reversedAt,omitempty"`
}

// SalaryRunResult is returned by a payroll run.
type SalaryRunResult struct {
	PayoutID    string  `json:"payoutId"`
	Period      string  `json:"period"`
	UsersPaid   int     `json:"usersPaid"`
	TotalAmount float64 `json:"totalAmount"`
}

// IncomeSummary aggregates a user's ledger for dashboards.
type IncomeSummary struct {
	UserID      primitive.ObjectID `json:"userId"`
	Total       float64            `json:"total"`
	TokenSales  float64            `json:"tokenSales"`
	ProductSale float64            `json:"productSales"`
	Salary      float64            `json:"salary"`
	Adhoc       float64            `json:"adhoc"`
	Records     int                `json:"records"`
}
