package models

// RoleType defines the user role type
type RoleType string

const (
	RoleStudent         RoleType = "STUDENT"
	RoleDepartmentAdmin RoleType = "DEPARTMENT_ADMIN"
	RoleSuperAdmin      RoleType = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known role tags.
func (r RoleType) Valid() bool {
	switch r {
	case RoleStudent, RoleDepartmentAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AppointmentState is the lifecycle state of an appointment slot.
// State is derived from student attachment: a slot with no student is
// available, a slot with a student is selected.
type AppointmentState string

const (
	AppointmentAvailable AppointmentState = "AVAILABLE"
	AppointmentSelected  AppointmentState = "SELECTED"
)

// AppointmentAction is a booking state change carried on notifications.
type AppointmentAction string

const (
	ActionSelected  AppointmentAction = "selected"
	ActionCancelled AppointmentAction = "cancelled"
)
