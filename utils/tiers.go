// utils/tiers.go
package utils

import (
	"github.com/distrohq/backoffice_backend/models"
)

// SelectTier returns the commission tier whose price range contains price, or
// nil when no tier matches. Tiers are configured sorted ascending by minPrice
// and non-overlapping; if that invariant is ever violated the first match in
// ascending order wins. A nil result means "no commission configured", which
// callers must not collapse to a zero amount.
func SelectTier(tiers []models.CommissionTier, price float64) *models.CommissionTier {
	for i := range tiers {
		t := &tiers[i]
		if price < t.MinPrice {
			continue
		}
		if t.MaxPrice == nil || price <= *t.MaxPrice {
			return t
		}
	}
	return nil
}

// EvaluateIncentive returns the ladder tier with the largest target that
// achievedCount has reached, or nil when achievedCount is below every target.
// Ladders are configured ascending by target; on (invalid) duplicate targets
// the later tier wins.
func EvaluateIncentive(tiers []models.IncentiveTier, achievedCount int) *models.IncentiveTier {
	var best *models.IncentiveTier
	for i := range tiers {
		t := &tiers[i]
		if t.Target <= achievedCount && (best == nil || t.Target >= best.Target) {
			best = t
		}
	}
	return best
}
