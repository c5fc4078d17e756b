package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distrohq/backoffice_backend/models"
)

func boundedTier(min, max float64) models.CommissionTier {
	return models.CommissionTier{MinPrice: min, MaxPrice: &max}
}

func TestSelectTierPicksContainingRange(t *testing.T) {
	tiers := []models.CommissionTier{
		boundedTier(0, 100000),
		boundedTier(100001, 200000),
		{MinPrice: 200001},
	}

	tier := SelectTier(tiers, 150000)
	require.NotNil(t, tier)
	assert.Equal(t, float64(100001), tier.MinPrice)
}

func TestSelectTierBoundariesAreInclusive(t *testing.T) {
	tiers := []models.CommissionTier{boundedTier(100, 200)}

	assert.NotNil(t, SelectTier(tiers, 100))
	assert.NotNil(t, SelectTier(tiers, 200))
	assert.Nil(t, SelectTier(tiers, 99.99))
	assert.Nil(t, SelectTier(tiers, 200.01))
}

func TestSelectTierUnboundedLastTier(t *testing.T) {
	tiers := []models.CommissionTier{
		boundedTier(0, 1000),
		{MinPrice: 1001},
	}

	tier := SelectTier(tiers, 9999999)
	require.NotNil(t, tier)
	assert.Nil(t, tier.MaxPrice)
}

func TestSelectTierNoMatchIsNilNotZero(t *testing.T) {
	tiers := []models.CommissionTier{boundedTier(500, 1000)}
	assert.Nil(t, SelectTier(tiers, 100))
	assert.Nil(t, SelectTier(nil, 100))
}

func TestEvaluateIncentivePicksHighestReachedTarget(t *testing.T) {
	ladder := []models.IncentiveTier{
		{Target: 5, Incentive: 1000},
		{Target: 10, Incentive: 2500},
		{Target: 20, Incentive: 6000},
	}

	tier := EvaluateIncentive(ladder, 12)
	require.NotNil(t, tier)
	assert.Equal(t, 10, tier.Target)
	assert.Equal(t, float64(2500), tier.Incentive)
}

func TestEvaluateIncentiveExactTarget(t *testing.T) {
	ladder := []models.IncentiveTier{{Target: 5, Incentive: 1000}}

	tier := EvaluateIncentive(ladder, 5)
	require.NotNil(t, tier)
	assert.Equal(t, float64(1000), tier.Incentive)
}

func TestEvaluateIncentiveBelowEveryTarget(t *testing.T) {
	ladder := []models.IncentiveTier{{Target: 5, Incentive: 1000}}

	assert.Nil(t, EvaluateIncentive(ladder, 4))
	assert.Nil(t, EvaluateIncentive(nil, 100))
}
