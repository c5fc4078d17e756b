// services/settings_validation.go
package services

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

// ValidateSettingsPayload decodes a proposed settings payload for its domain
// and checks the structural invariants before a change request is created.
func ValidateSettingsPayload(domain models.SettingsDomain, payload bson.Raw) error {
	switch domain {
	case models.DomainCommission:
		var settings models.CommissionSettings
		if err := bson.Unmarshal(payload, &settings); err != nil {
			return utils.NewValidationError("newSettings", "malformed commission settings: "+err.Error())
		}
		return validateRoleAmounts(settings.Amounts)

	case models.DomainProductCommission:
		var settings models.ProductCommissionSettings
		if err := bson.Unmarshal(payload, &settings); err != nil {
			return utils.NewValidationError("newSettings", "malformed product commission settings: "+err.Error())
		}
		return ValidateCommissionTiers(settings.Tiers)

	case models.DomainIncentive:
		var settings models.IncentiveSettings
		if err := bson.Unmarshal(payload, &settings); err != nil {
			return utils.NewValidationError("newSettings", "malformed incentive settings: "+err.Error())
		}
		for key, ladder := range settings.Ladders {
			if err := ValidateIncentiveLadder(ladder); err != nil {
				return utils.NewValidationError("ladders", fmt.Sprintf("ladder %q: %v", key, err))
			}
		}
		return nil

	case models.DomainSalary:
		var settings models.SalarySettings
		if err := bson.Unmarshal(payload, &settings); err != nil {
			return utils.NewValidationError("newSettings", "malformed salary settings: "+err.Error())
		}
		return validateRoleAmounts(settings.Salaries)

	case models.DomainSignupRole:
		var settings models.SignupRoleSettings
		if err := bson.Unmarshal(payload, &settings); err != nil {
			return utils.NewValidationError("newSettings", "malformed signup role settings: "+err.Error())
		}
		for _, role := range settings.VisibleRoles {
			if !role.IsValid() {
				return utils.NewValidationError("visibleRoles", fmt.Sprintf("unknown role %q", role))
			}
		}
		return nil

	default:
		return utils.NewValidationError("domain", fmt.Sprintf("unknown settings domain %q", domain))
	}
}

// ValidateCommissionTiers checks the tier table invariants: sorted ascending
// by minPrice, non-overlapping ranges, only the last tier may be unbounded,
// and all amounts non-negative.
func ValidateCommissionTiers(tiers []models.CommissionTier) error {
	for i, tier := range tiers {
		if tier.MinPrice < 0 {
			return utils.NewValidationError("tiers", fmt.Sprintf("tier %d has negative minPrice", i))
		}
		if tier.MaxPrice != nil && *tier.MaxPrice < tier.MinPrice {
			return utils.NewValidationError("tiers", fmt.Sprintf("tier %d has maxPrice below minPrice", i))
		}
		if tier.MaxPrice == nil && i != len(tiers)-1 {
			return utils.NewValidationError("tiers", fmt.Sprintf("tier %d is unbounded but not last", i))
		}
		if i > 0 {
			prev := tiers[i-1]
			if tier.MinPrice <= prev.MinPrice {
				return utils.NewValidationError("tiers", fmt.Sprintf("tier %d is not sorted ascending by minPrice", i))
			}
			if prev.MaxPrice != nil && tier.MinPrice <= *prev.MaxPrice {
				return utils.NewValidationError("tiers", fmt.Sprintf("tier %d overlaps tier %d", i, i-1))
			}
		}
		for role, rate := range tier.Rates {
			if !role.IsValid() {
				return utils.NewValidationError("tiers", fmt.Sprintf("tier %d references unknown role %q", i, role))
			}
			if rate.Cash < 0 || rate.Installments < 0 {
				return utils.NewValidationError("tiers", fmt.Sprintf("tier %d has negative amount for role %q", i, role))
			}
		}
	}
	return nil
}

// ValidateIncentiveLadder checks one incentive ladder: strictly ascending
// positive targets with non-negative payouts.
func ValidateIncentiveLadder(ladder []models.IncentiveTier) error {
	for i, tier := range ladder {
		if tier.Target <= 0 {
			return fmt.Errorf("tier %d has non-positive target", i)
		}
		if tier.Incentive < 0 {
			return fmt.Errorf("tier %d has negative incentive", i)
		}
		if i > 0 && tier.Target <= ladder[i-1].Target {
			return fmt.Errorf("tier %d target is not strictly ascending", i)
		}
	}
	return nil
}

func validateRoleAmounts(amounts map[models.Role]float64) error {
	for role, amount := range amounts {
		if !role.IsValid() {
			return utils.NewValidationError("amounts", fmt.Sprintf("unknown role %q", role))
		}
		if amount < 0 {
			return utils.NewValidationError("amounts", fmt.Sprintf("negative amount for role %q", role))
		}
	}
	return nil
}
