package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/distrohq/backoffice_backend/models"
	"github.com/distrohq/backoffice_backend/utils"
)

func mustRaw(t *testing.T, v interface{}) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestValidateCommissionTiersAccepts(t *testing.T) {
	max1 := 100000.0
	max2 := 200000.0
	tiers := []models.CommissionTier{
		{MinPrice: 0, MaxPrice: &max1, Rates: map[models.Role]models.RoleAmount{
			models.RoleSalesman: {Cash: 500, Installments: 300},
		}},
		{MinPrice: 100001, MaxPrice: &max2},
		{MinPrice: 200001},
	}
	assert.NoError(t, ValidateCommissionTiers(tiers))
}

func TestValidateCommissionTiersRejectsOverlap(t *testing.T) {
	max1 := 150000.0
	tiers := []models.CommissionTier{
		{MinPrice: 0, MaxPrice: &max1},
		{MinPrice: 100000},
	}
	err := ValidateCommissionTiers(tiers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlaps")
}

func TestValidateCommissionTiersRejectsUnboundedMiddle(t *testing.T) {
	max := 300000.0
	tiers := []models.CommissionTier{
		{MinPrice: 0},
		{MinPrice: 200001, MaxPrice: &max},
	}
	err := ValidateCommissionTiers(tiers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unbounded")
}

func TestValidateCommissionTiersRejectsUnsorted(t *testing.T) {
	max1 := 300000.0
	max2 := 100000.0
	tiers := []models.CommissionTier{
		{MinPrice: 200000, MaxPrice: &max1},
		{MinPrice: 0, MaxPrice: &max2},
	}
	assert.Error(t, ValidateCommissionTiers(tiers))
}

func TestValidateCommissionTiersRejectsNegativeAmount(t *testing.T) {
	tiers := []models.CommissionTier{
		{MinPrice: 0, Rates: map[models.Role]models.RoleAmount{
			models.RoleSalesman: {Cash: -10},
		}},
	}
	assert.Error(t, ValidateCommissionTiers(tiers))
}

func TestValidateIncentiveLadder(t *testing.T) {
	good := []models.IncentiveTier{
		{Target: 5, Incentive: 1000},
		{Target: 10, Incentive: 2500},
	}
	assert.NoError(t, ValidateIncentiveLadder(good))

	duplicate := []models.IncentiveTier{
		{Target: 5, Incentive: 1000},
		{Target: 5, Incentive: 2000},
	}
	assert.Error(t, ValidateIncentiveLadder(duplicate))

	zeroTarget := []models.IncentiveTier{{Target: 0, Incentive: 1000}}
	assert.Error(t, ValidateIncentiveLadder(zeroTarget))
}

func TestValidateSettingsPayloadCommission(t *testing.T) {
	good := models.CommissionSettings{Amounts: map[models.Role]float64{
		models.RoleSalesman: 500,
	}}
	assert.NoError(t, ValidateSettingsPayload(models.DomainCommission, mustRaw(t, good)))

	bad := models.CommissionSettings{Amounts: map[models.Role]float64{
		"astronaut": 500,
	}}
	err := ValidateSettingsPayload(models.DomainCommission, mustRaw(t, bad))
	require.Error(t, err)
	assert.True(t, utils.IsValidation(err))
}

func TestValidateSettingsPayloadSalaryRejectsNegative(t *testing.T) {
	bad := models.SalarySettings{Salaries: map[models.Role]float64{
		models.RoleSalesman: -100,
	}}
	err := ValidateSettingsPayload(models.DomainSalary, mustRaw(t, bad))
	require.Error(t, err)
	assert.True(t, utils.IsValidation(err))
}

func TestValidateSettingsPayloadSignupRoles(t *testing.T) {
	good := models.SignupRoleSettings{VisibleRoles: []models.Role{
		models.RoleSalesman, models.RoleRecoveryOfficer,
	}}
	assert.NoError(t, ValidateSettingsPayload(models.DomainSignupRole, mustRaw(t, good)))

	bad := models.SignupRoleSettings{VisibleRoles: []models.Role{"pirate"}}
	assert.Error(t, ValidateSettingsPayload(models.DomainSignupRole, mustRaw(t, bad)))
}

func TestValidateSettingsPayloadUnknownDomain(t *testing.T) {
	err := ValidateSettingsPayload("weather", mustRaw(t, bson.M{}))
	require.Error(t, err)
	assert.True(t, utils.IsValidation(err))
}

func TestValidateSettingsPayloadIncentive(t *testing.T) {
	good := models.IncentiveSettings{Ladders: map[string][]models.IncentiveTier{
		models.IncentiveKey(models.RoleSalesman, models.SalesmanStageJunior): {
			{Target: 5, Incentive: 1000},
		},
	}}
	assert.NoError(t, ValidateSettingsPayload(models.DomainIncentive, mustRaw(t, good)))

	bad := models.IncentiveSettings{Ladders: map[string][]models.IncentiveTier{
		"salesman:junior": {{Target: 10}, {Target: 5}},
	}}
	err := ValidateSettingsPayload(models.DomainIncentive, mustRaw(t, bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ladder")
}
