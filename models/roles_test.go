package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleIsValid(t *testing.T) {
	for _, role := range AllRoles {
		assert.True(t, role.IsValid(), "role %q should be valid", role)
	}
	assert.False(t, Role("astronaut").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestCapabilityTable(t *testing.T) {
	assert.True(t, RoleSuperAdmin.BypassesApproval())
	assert.True(t, RoleSuperAdmin.CanResolveRequests())
	assert.False(t, RoleSuperAdmin.Salaried())

	assert.True(t, RoleHR.CanResolveRequests())
	assert.False(t, RoleHR.BypassesApproval())

	assert.True(t, RoleSalesman.CommissionEligible())
	assert.True(t, RoleSalesman.Salaried())
	assert.False(t, RoleSalesman.CanResolveRequests())

	assert.False(t, RoleAccountant.CommissionEligible())
	assert.True(t, RoleAccountant.Salaried())

	// Unknown roles carry no capabilities at all.
	assert.Equal(t, RoleCapabilities{}, Role("astronaut").Capabilities())
}

func TestIncentiveKey(t *testing.T) {
	assert.Equal(t, "salesman:junior", IncentiveKey(RoleSalesman, SalesmanStageJunior))
	assert.Equal(t, "salesman:senior", IncentiveKey(RoleSalesman, SalesmanStageSenior))
	// Stage only matters for salesmen.
	assert.Equal(t, "branch_manager", IncentiveKey(RoleBranchManager, SalesmanStageJunior))
	assert.Equal(t, "salesman", IncentiveKey(RoleSalesman, ""))
}
