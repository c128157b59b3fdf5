package core

import "github.com/edvin/stream/internal/model"

// AccessPolicy decides who may manage and view private feeds, based on the
// configured role access set.
type AccessPolicy struct {
	roleAccess []string
}

// NewAccessPolicy creates an AccessPolicy over the configured role set.
func NewAccessPolicy(roleAccess []string) *AccessPolicy {
	return &AccessPolicy{roleAccess: roleAccess}
}

// CanManageOwnKey reports whether the user may see and regenerate their
// own feed key. Requires a role in the access set; no super-admin bypass
// on the management surface.
func (p *AccessPolicy) CanManageOwnKey(u *model.User) bool {
	if u == nil {
		return false
	}
	return rolesIntersect(u.Roles, p.roleAccess)
}

// CanViewFeed reports whether the user may view feeds. Super admins bypass
// the role check; everyone else needs a role in the access set. A user
// with no roles never passes.
func (p *AccessPolicy) CanViewFeed(u *model.User) bool {
	if u == nil {
		return false
	}
	if u.SuperAdmin {
		return true
	}
	return rolesIntersect(u.Roles, p.roleAccess)
}

func rolesIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
