// Package authz carries the caller's tenant and abilities into service calls.
package authz

const (
	AbilityRead          = "read"
	AbilityDeploy        = "deploy"
	AbilityViewSensitive = "view:sensitive"

	abilityAll  = "*"
	abilityRoot = "root"
)

// Context is resolved once per request from the inbound credential and
// passed explicitly to every service entry point.
type Context struct {
	TeamID    *uint
	Abilities []string
}

// New builds a Context for teamID with the given abilities.
func New(teamID uint, abilities ...string) Context {
	return Context{TeamID: &teamID, Abilities: abilities}
}

// Anonymous is a Context without a tenant; every operation fails closed.
func Anonymous() Context { return Context{} }

func (c Context) Authenticated() bool { return c.TeamID != nil }

// Team returns the tenant id; callers check Authenticated first.
func (c Context) Team() uint {
	if c.TeamID == nil {
		return 0
	}
	return *c.TeamID
}

// Can reports whether the credential grants ability, either directly or
// through a wildcard.
func (c Context) Can(ability string) bool {
	for _, a := range c.Abilities {
		if a == ability || a == abilityAll || a == abilityRoot {
			return true
		}
	}
	return false
}
