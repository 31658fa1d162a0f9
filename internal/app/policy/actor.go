package policy

import "github.com/lsa-mis/student-visit-api/internal/app/models"

// Actor is the authenticated principal a policy decision is made for. It is
// threaded explicitly into every policy and booking call; there is no ambient
// session lookup. The zero value is the anonymous actor and denies everything.
type Actor struct {
	UserID       int64
	Role         models.RoleType
	DepartmentID *int64 // set only for department admins

	authenticated bool
}

// Anonymous is the actor for requests with no session.
var Anonymous = Actor{}

// NewActor builds an authenticated actor from token claims.
func NewActor(userID int64, role models.RoleType, departmentID *int64) Actor {
	return Actor{
		UserID:        userID,
		Role:          role,
		DepartmentID:  departmentID,
		authenticated: true,
	}
}

// Authenticated reports whether the actor carries a session at all.
func (a Actor) Authenticated() bool {
	return a.authenticated && a.UserID > 0
}

// IsStudent reports whether the actor is an authenticated student.
// All predicates fail closed for the anonymous actor.
func (a Actor) IsStudent() bool {
	return a.Authenticated() && a.Role == models.RoleStudent
}

// IsDepartmentAdmin reports whether the actor is an authenticated department admin.
func (a Actor) IsDepartmentAdmin() bool {
	return a.Authenticated() && a.Role == models.RoleDepartmentAdmin
}

// IsSuperAdmin reports whether the actor is an authenticated super admin.
func (a Actor) IsSuperAdmin() bool {
	return a.Authenticated() && a.Role == models.RoleSuperAdmin
}

// IsAdmin reports whether the actor holds either admin role.
func (a Actor) IsAdmin() bool {
	return a.IsDepartmentAdmin() || a.IsSuperAdmin()
}

// ManagesDepartment reports whether the actor may administer the given
// department: super admins manage every department, department admins only
// their own.
func (a Actor) ManagesDepartment(departmentID int64) bool {
	if a.IsSuperAdmin() {
		return true
	}
	if a.IsDepartmentAdmin() {
		return a.DepartmentID != nil && *a.DepartmentID == departmentID
	}
	return false
}
