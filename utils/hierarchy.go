// utils/hierarchy.go
package utils

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/distrohq/backoffice_backend/models"
)

// DownlineResult holds the transitive downline of a user: everyone who
// reports to them directly or indirectly through the referral chain.
type DownlineResult struct {
	IDs   map[primitive.ObjectID]bool
	Users []models.User
}

// ResolveDownline walks outward from userID over the in-memory user list,
// following the inverse of referrerId (and assignedManagerIds for roles that
// report to several superiors). Pure function, no database access. Each node
// is visited at most once, so a malformed cycle in the data cannot loop.
func ResolveDownline(userID primitive.ObjectID, allUsers []models.User) DownlineResult {
	result := DownlineResult{IDs: make(map[primitive.ObjectID]bool)}

	// Index children by superior so the BFS is linear in the user count.
	children := make(map[primitive.ObjectID][]models.User)
	for _, u := range allUsers {
		if u.ReferrerID != nil {
			children[*u.ReferrerID] = append(children[*u.ReferrerID], u)
		}
		for _, mgrID := range u.AssignedManagerIDs {
			if u.ReferrerID == nil || *u.ReferrerID != mgrID {
				children[mgrID] = append(children[mgrID], u)
			}
		}
	}

	visited := map[primitive.ObjectID]bool{userID: true}
	queue := []primitive.ObjectID{userID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			result.IDs[child.ID] = true
			result.Users = append(result.Users, child)
			queue = append(queue, child.ID)
		}
	}
	return result
}

// AncestorChain walks upward from start following referrerId until the chain
// ends, collecting one user per hop with start itself first. When
// eligibleOnly is set, roles that do not participate in commission are
// skipped but the walk continues through them.
//
// A referrerId pointing at a user that does not exist ends the chain
// silently; the returned warning records the broken link for logging. The
// walk is bounded by models.MaxHierarchyDepth and guards against referrer
// cycles, so corrupted data cannot hang the caller.
func AncestorChain(start models.User, allUsers []models.User, eligibleOnly bool) ([]models.User, *IntegrityWarning) {
	byID := make(map[primitive.ObjectID]models.User, len(allUsers))
	for _, u := range allUsers {
		byID[u.ID] = u
	}

	var chain []models.User
	var warning *IntegrityWarning
	visited := make(map[primitive.ObjectID]bool)

	current := start
	for hops := 0; hops < models.MaxHierarchyDepth; hops++ {
		if visited[current.ID] {
			warning = NewIntegrityWarning("referrer cycle detected at user %s", current.ID.Hex())
			break
		}
		visited[current.ID] = true

		if !eligibleOnly || current.Role.CommissionEligible() {
			chain = append(chain, current)
		}

		if current.ReferrerID == nil {
			break
		}
		next, ok := byID[*current.ReferrerID]
		if !ok {
			warning = NewIntegrityWarning("user %s references missing referrer %s",
				current.ID.Hex(), current.ReferrerID.Hex())
			break
		}
		current = next
	}
	return chain, warning
}
