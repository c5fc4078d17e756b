package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/distrohq/backoffice_backend/models"
)

func newUser(role models.Role, referrer *models.User) models.User {
	u := models.User{ID: primitive.NewObjectID(), Role: role}
	if referrer != nil {
		id := referrer.ID
		u.ReferrerID = &id
	}
	return u
}

func TestAncestorChainStartsWithSelf(t *testing.T) {
	gm := newUser(models.RoleGeneralManager, nil)
	manager := newUser(models.RoleBranchManager, &gm)
	salesman := newUser(models.RoleSalesman, &manager)
	all := []models.User{gm, manager, salesman}

	chain, warn := AncestorChain(salesman, all, false)
	require.Nil(t, warn)
	require.Len(t, chain, 3)
	assert.Equal(t, salesman.ID, chain[0].ID)
	assert.Equal(t, manager.ID, chain[1].ID)
	assert.Equal(t, gm.ID, chain[2].ID)
}

func TestAncestorChainNoReferrer(t *testing.T) {
	solo := newUser(models.RoleSalesman, nil)

	chain, warn := AncestorChain(solo, []models.User{solo}, false)
	require.Nil(t, warn)
	require.Len(t, chain, 1)
	assert.Equal(t, solo.ID, chain[0].ID)
}

func TestAncestorChainBrokenLinkStopsSilently(t *testing.T) {
	ghost := primitive.NewObjectID()
	manager := models.User{ID: primitive.NewObjectID(), Role: models.RoleBranchManager, ReferrerID: &ghost}
	salesman := newUser(models.RoleSalesman, &manager)
	all := []models.User{manager, salesman}

	chain, warn := AncestorChain(salesman, all, false)
	require.NotNil(t, warn)
	assert.Contains(t, warn.Error(), ghost.Hex())
	// The walk keeps what it found before the break.
	require.Len(t, chain, 2)
	assert.Equal(t, salesman.ID, chain[0].ID)
	assert.Equal(t, manager.ID, chain[1].ID)
}

func TestAncestorChainSkipsIneligibleRoles(t *testing.T) {
	gm := newUser(models.RoleGeneralManager, nil)
	accountant := newUser(models.RoleAccountant, &gm)
	salesman := newUser(models.RoleSalesman, &accountant)
	all := []models.User{gm, accountant, salesman}

	chain, warn := AncestorChain(salesman, all, true)
	require.Nil(t, warn)
	// The accountant is skipped but the walk continues through them.
	require.Len(t, chain, 2)
	assert.Equal(t, salesman.ID, chain[0].ID)
	assert.Equal(t, gm.ID, chain[1].ID)
}

func TestAncestorChainCycleTerminates(t *testing.T) {
	a := models.User{ID: primitive.NewObjectID(), Role: models.RoleBranchManager}
	b := models.User{ID: primitive.NewObjectID(), Role: models.RoleZonalManager}
	a.ReferrerID = &b.ID
	b.ReferrerID = &a.ID
	all := []models.User{a, b}

	chain, warn := AncestorChain(a, all, false)
	require.NotNil(t, warn)
	assert.Contains(t, warn.Error(), "cycle")
	assert.Len(t, chain, 2)
}

func TestAncestorChainDepthBound(t *testing.T) {
	var all []models.User
	var prev *models.User
	for i := 0; i < models.MaxHierarchyDepth+5; i++ {
		u := newUser(models.RoleSalesman, prev)
		all = append(all, u)
		prev = &all[len(all)-1]
	}

	chain, _ := AncestorChain(all[len(all)-1], all, false)
	assert.LessOrEqual(t, len(chain), models.MaxHierarchyDepth)
}

func TestResolveDownlineCollectsTransitively(t *testing.T) {
	gm := newUser(models.RoleGeneralManager, nil)
	mgrA := newUser(models.RoleBranchManager, &gm)
	mgrB := newUser(models.RoleBranchManager, &gm)
	sellerA := newUser(models.RoleSalesman, &mgrA)
	sellerB := newUser(models.RoleSalesman, &mgrB)
	outsider := newUser(models.RoleSalesman, nil)
	all := []models.User{gm, mgrA, mgrB, sellerA, sellerB, outsider}

	result := ResolveDownline(gm.ID, all)
	assert.Len(t, result.Users, 4)
	assert.True(t, result.IDs[sellerA.ID])
	assert.True(t, result.IDs[sellerB.ID])
	assert.False(t, result.IDs[outsider.ID])
	assert.False(t, result.IDs[gm.ID], "the root is not part of its own downline")
}

func TestResolveDownlineVisitsEachUserOnce(t *testing.T) {
	// A salesman both referred by and assigned to the same manager must
	// appear once.
	manager := newUser(models.RoleBranchManager, nil)
	salesman := newUser(models.RoleSalesman, &manager)
	salesman.AssignedManagerIDs = []primitive.ObjectID{manager.ID}
	all := []models.User{manager, salesman}

	result := ResolveDownline(manager.ID, all)
	assert.Len(t, result.Users, 1)
}

func TestResolveDownlineFollowsManagerAssignments(t *testing.T) {
	tom := newUser(models.RoleTeamOperationManager, nil)
	salesman := newUser(models.RoleSalesman, nil)
	salesman.AssignedManagerIDs = []primitive.ObjectID{tom.ID}
	all := []models.User{tom, salesman}

	result := ResolveDownline(tom.ID, all)
	require.Len(t, result.Users, 1)
	assert.Equal(t, salesman.ID, result.Users[0].ID)
}
