// models/roles.go
package models

// Role is the closed set of staff roles in the system.
type Role string

const (
	RoleSuperAdmin           Role = "super_admin"
	RoleAdmin                Role = "admin"
	RoleHR                   Role = "hr"
	RoleGeneralManager       Role = "general_manager"
	RoleDivisionalDirector   Role = "divisional_director"
	RoleRegionalDirector     Role = "regional_director"
	RoleZonalManager         Role = "zonal_manager"
	RoleBranchManager        Role = "branch_manager"
	RoleTeamOperationManager Role = "team_operation_manager"
	RoleSalesman             Role = "salesman"
	RoleRecoveryOfficer      Role = "recovery_officer"
	RoleDeliveryBoy          Role = "delivery_boy"
	RoleAccountant           Role = "accountant"
	RoleStockManager         Role = "stock_manager"
	RoleMarketingOfficer     Role = "marketing_officer"
)

// Salesman sub-stages
const (
	SalesmanStageJunior = "junior"
	SalesmanStageSenior = "senior"
)

// RoleCapabilities describes what a role is allowed to do. Looked up once
// instead of string-matching role names all over the handlers.
type RoleCapabilities struct {
	CommissionEligible bool // participates in commission distribution up the referral chain
	CanResolveRequests bool // may approve/reject settings change requests
	BypassesApproval   bool // settings changes apply directly, no change request created
	Salaried           bool // included in monthly salary payout runs
	CanManageBranch    bool // manages users within a branch
}

var roleCapabilities = map[Role]RoleCapabilities{
	RoleSuperAdmin:           {CanResolveRequests: true, BypassesApproval: true},
	RoleAdmin:                {CanManageBranch: true},
	RoleHR:                   {CanResolveRequests: true, Salaried: true},
	RoleGeneralManager:       {CommissionEligible: true, Salaried: true, CanManageBranch: true},
	RoleDivisionalDirector:   {CommissionEligible: true, Salaried: true, CanManageBranch: true},
	RoleRegionalDirector:     {CommissionEligible: true, Salaried: true, CanManageBranch: true},
	RoleZonalManager:         {CommissionEligible: true, Salaried: true, CanManageBranch: true},
	RoleBranchManager:        {CommissionEligible: true, Salaried: true, CanManageBranch: true},
	RoleTeamOperationManager: {CommissionEligible: true, Salaried: true},
	RoleSalesman:             {CommissionEligible: true, Salaried: true},
	RoleRecoveryOfficer:      {Salaried: true},
	RoleDeliveryBoy:          {Salaried: true},
	RoleAccountant:           {Salaried: true},
	RoleStockManager:         {Salaried: true},
	RoleMarketingOfficer:     {Salaried: true},
}

// AllRoles lists every known role in hierarchy order (top first).
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleHR,
	RoleGeneralManager,
	RoleDivisionalDirector,
	RoleRegionalDirector,
	RoleZonalManager,
	RoleBranchManager,
	RoleTeamOperationManager,
	RoleSalesman,
	RoleRecoveryOfficer,
	RoleDeliveryBoy,
	RoleAccountant,
	RoleStockManager,
	RoleMarketingOfficer,
}

// MaxHierarchyDepth bounds the upward referrer walk. The role tree is at most
// this deep, so a longer chain means corrupted data.
const MaxHierarchyDepth = 10

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Capabilities returns the capability set for the role. Unknown roles get the
// zero value (no capabilities).
func (r Role) Capabilities() RoleCapabilities {
	return roleCapabilities[r]
}

// CommissionEligible reports whether the role earns commission on sales made
// by its downline.
func (r Role) CommissionEligible() bool {
	return roleCapabilities[r].CommissionEligible
}

// CanResolveRequests reports whether the role may approve or reject settings
// change requests.
func (r Role) CanResolveRequests() bool {
	return roleCapabilities[r].CanResolveRequests
}

// BypassesApproval reports whether settings changes by this role skip the
// change-request workflow.
func (r Role) BypassesApproval() bool {
	return roleCapabilities[r].BypassesApproval
}

// Salaried reports whether the role is included in payroll runs.
func (r Role) Salaried() bool {
	return roleCapabilities[r].Salaried
}
