// models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAmount holds the commission amounts for one role within a price tier,
// split by payment method.
type RoleAmount struct {
	Cash         float64 `json:"cash" bson:"cash"`
	Installments float64 `json:"installments" bson:"installments"`
}

// CommissionTier is one price range of the product commission table. A nil
// MaxPrice means the range is unbounded above. Tiers are stored sorted
// ascending by MinPrice and must not overlap.
type CommissionTier struct {
	MinPrice float64             `json:"minPrice" bson:"minPrice"`
	MaxPrice *float64            `json:"maxPrice,omitempty" bson:"maxPrice,omitempty"`
	Rates    map[Role]RoleAmount `json:"rates" bson:"rates"`
}

// CommissionSettings holds the flat per-role token sale commission amounts.
// Version supports the optimistic precondition on settings writes.
type CommissionSettings struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Amounts   map[Role]float64   `json:"amounts" bson:"amounts"`
	Version   int64              `json:"version" bson:"version"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductCommissionSettings holds the tiered product sale commission table.
type ProductCommissionSettings struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Tiers     []CommissionTier   `json:"tiers" bson:"tiers"`
	Version   int64              `json:"version" bson:"version"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// IncentiveTier is one target step of an incentive ladder. Achieving a higher
// target supersedes lower ones.
type IncentiveTier struct {
	Target    int     `json:"target" bson:"target"`
	Incentive float64 `json:"incentive" bson:"incentive"`
}

// IncentiveSettings maps an incentive key (role name, or role plus salesman
// stage, see IncentiveKey) to its ascending target ladder.
type IncentiveSettings struct {
	ID        primitive.ObjectID         `json:"id,omitempty" bson:"_id,omitempty"`
	Ladders   map[string][]IncentiveTier `json:"ladders" bson:"ladders"`
	Version   int64                      `json:"version" bson:"version"`
	UpdatedBy primitive.ObjectID         `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time                  `json:"updatedAt" bson:"updatedAt"`
}

// IncentiveKey returns the ladder key for a user. Salesmen have separate
// ladders per stage; every other role has one ladder.
func IncentiveKey(role Role, salesmanStage string) string {
	if role == RoleSalesman && salesmanStage != "" {
		return string(role) + ":" + salesmanStage
	}
	return string(role)
}

// SalarySettings holds the per-role monthly base salary.
type SalarySettings struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Salaries  map[Role]float64   `json:"salaries" bson:"salaries"`
	Version   int64              `json:"version" bson:"version"`
	UpdatedBy primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SignupRoleSettings controls which roles are offered on the staff signup form.
type SignupRoleSettings struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	VisibleRoles []Role             `json:"visibleRoles" bson:"visibleRoles"`
	Version      int64              `json:"version" bson:"version"`
	UpdatedBy    primitive.ObjectID `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}
