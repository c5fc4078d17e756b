// models/change_request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettingsDomain identifies which settings document a change request targets.
type SettingsDomain string

const (
	DomainCommission        SettingsDomain = "commission"
	DomainSalary            SettingsDomain = "salary"
	DomainIncentive         SettingsDomain = "incentive"
	DomainSignupRole        SettingsDomain = "signup_role"
	DomainProductCommission SettingsDomain = "product_commission"
)

// SettingsDomains lists every domain subject to the change-request workflow.
var SettingsDomains = []SettingsDomain{
	DomainCommission,
	DomainSalary,
	DomainIncentive,
	DomainSignupRole,
	DomainProductCommission,
}

// IsValid reports whether d is a known settings domain.
func (d SettingsDomain) IsValid() bool {
	for _, known := range SettingsDomains {
		if d == known {
			return true
		}
	}
	return false
}

// Change request statuses.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ChangeRequest is a pending proposal to alter one settings domain. All five
// domains share this one shape; the settings snapshots are stored raw and
// decoded by the domain's typed accessor. At most one request per domain may
// be pending at a time.
type ChangeRequest struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Domain          SettingsDomain      `json:"domain" bson:"domain"`
	RequestedByID   primitive.ObjectID  `json:"requestedById" bson:"requestedById"`
	RequestedByName string              `json:"requestedByName" bson:"requestedByName"`
	RequestDate     time.Time           `json:"requestDate" bson:"requestDate"`
	CurrentSettings bson.Raw            `json:"currentSettings" bson:"currentSettings"`
	NewSettings     bson.Raw            `json:"newSettings" bson:"newSettings"`
	SettingsVersion int64               `json:"settingsVersion" bson:"settingsVersion"` // live settings version at submit time
	Status          string              `json:"status" bson:"status"`
	ResolvedByID    *primitive.ObjectID `json:"resolvedById,omitempty" bson:"resolvedById,omitempty"`
	ResolvedDate    *time.Time          `json:"resolvedDate,omitempty" bson:"resolvedDate,omitempty"`
}
