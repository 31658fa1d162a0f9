// Package policy holds the authorization rules for every protected surface.
// Each predicate is a pure function of the actor: no storage access, no
// errors, denial is an ordinary false. The caller translates false into 401
// or 403 depending on whether the actor is authenticated at all; "requires
// authentication" always takes precedence over "requires role X".
package policy

import "github.com/lsa-mis/student-visit-api/internal/app/models"

// DashboardPolicy guards the student dashboard.
type DashboardPolicy struct{}

// Show allows students to view their own dashboard.
func (DashboardPolicy) Show(actor Actor) bool {
	return actor.IsStudent()
}

// Preview allows admins a read-only impersonation view; students are denied.
func (DashboardPolicy) Preview(actor Actor) bool {
	return actor.IsAdmin()
}

// MapPolicy guards the campus map page.
type MapPolicy struct{}

// Show allows students, or admins via the preview surface.
func (MapPolicy) Show(actor Actor) bool {
	return actor.IsStudent() || actor.IsAdmin()
}

// QuestionnairePolicy guards student questionnaire self-service. Reaching the
// right questionnaire instance is enforced by scoping queries to the
// authenticated student, not here.
type QuestionnairePolicy struct{}

func (QuestionnairePolicy) Index(actor Actor) bool  { return actor.IsStudent() }
func (QuestionnairePolicy) Show(actor Actor) bool   { return actor.IsStudent() }
func (QuestionnairePolicy) Edit(actor Actor) bool   { return actor.IsStudent() }
func (QuestionnairePolicy) Update(actor Actor) bool { return actor.IsStudent() }

// AppointmentPolicy guards student booking operations.
type AppointmentPolicy struct{}

func (AppointmentPolicy) Index(actor Actor) bool   { return actor.IsStudent() }
func (AppointmentPolicy) Create(actor Actor) bool  { return actor.IsStudent() }
func (AppointmentPolicy) Destroy(actor Actor) bool { return actor.IsStudent() }

// RoleLabel resolves a role tag to a human-readable label with exhaustive
// matching over the known variants.
func RoleLabel(role models.RoleType) string {
	switch role {
	case models.RoleStudent:
		return "Student"
	case models.RoleDepartmentAdmin:
		return "Department Admin"
	case models.RoleSuperAdmin:
		return "Super Admin"
	default:
		return "Anonymous"
	}
}
