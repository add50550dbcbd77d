// Package membership defines project membership and the role-based
// authorization model. The role is the sole authorization input for the
// workflow core: a closed enum with a capability predicate, not a hierarchy.
package membership

import "time"

// Role is the membership role of a user within a project.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleMember  Role = "member"
)

// IsValid returns true if the role is one of the defined constants.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleMember:
		return true
	default:
		return false
	}
}

// CanManage reports whether the role grants sprint-mutation capability:
// starting, completing, cancelling, or deleting sprints, and moving issues
// into or out of a sprint.
func (r Role) CanManage() bool {
	return r == RoleOwner || r == RoleManager
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// Membership binds a user to a project with a role. The (ProjectID, UserID)
// pair is unique.
type Membership struct {
	ProjectID int64
	UserID    int64
	Role      Role
	CreatedAt time.Time
}
