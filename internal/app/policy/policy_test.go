package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
)

func deptID(id int64) *int64 { return &id }

func TestAnonymousDeniesEverything(t *testing.T) {
	actor := Anonymous

	assert.False(t, actor.Authenticated())
	assert.False(t, DashboardPolicy{}.Show(actor))
	assert.False(t, DashboardPolicy{}.Preview(actor))
	assert.False(t, MapPolicy{}.Show(actor))
	assert.False(t, QuestionnairePolicy{}.Index(actor))
	assert.False(t, QuestionnairePolicy{}.Update(actor))
	assert.False(t, AppointmentPolicy{}.Index(actor))
	assert.False(t, AppointmentPolicy{}.Create(actor))
	assert.False(t, AppointmentPolicy{}.Destroy(actor))
	assert.False(t, actor.ManagesDepartment(1))
}

func TestZeroValueActorIsAnonymous(t *testing.T) {
	// A forged actor built without NewActor must still deny everything,
	// even when it carries a plausible user ID and role.
	forged := Actor{UserID: 42, Role: models.RoleSuperAdmin}

	assert.False(t, forged.Authenticated())
	assert.False(t, forged.IsSuperAdmin())
	assert.False(t, forged.ManagesDepartment(1))
}

func TestAppointmentPolicy(t *testing.T) {
	student := NewActor(1, models.RoleStudent, nil)
	deptAdmin := NewActor(2, models.RoleDepartmentAdmin, deptID(10))
	superAdmin := NewActor(3, models.RoleSuperAdmin, nil)

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"student may book", student, true},
		{"department admin may not book", deptAdmin, false},
		{"super admin may not book", superAdmin, false},
		{"anonymous may not book", Anonymous, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := AppointmentPolicy{}
			assert.Equal(t, tt.want, p.Index(tt.actor))
			assert.Equal(t, tt.want, p.Create(tt.actor))
			assert.Equal(t, tt.want, p.Destroy(tt.actor))
		})
	}
}

func TestDashboardPreviewIsAdminOnly(t *testing.T) {
	student := NewActor(1, models.RoleStudent, nil)
	deptAdmin := NewActor(2, models.RoleDepartmentAdmin, deptID(10))
	superAdmin := NewActor(3, models.RoleSuperAdmin, nil)

	assert.True(t, DashboardPolicy{}.Show(student))
	assert.False(t, DashboardPolicy{}.Preview(student))

	assert.False(t, DashboardPolicy{}.Show(deptAdmin))
	assert.True(t, DashboardPolicy{}.Preview(deptAdmin))
	assert.True(t, DashboardPolicy{}.Preview(superAdmin))

	assert.True(t, MapPolicy{}.Show(student))
	assert.True(t, MapPolicy{}.Show(deptAdmin))
}

func TestManagesDepartment(t *testing.T) {
	tests := []struct {
		name         string
		actor        Actor
		departmentID int64
		want         bool
	}{
		{"super admin manages any department", NewActor(1, models.RoleSuperAdmin, nil), 99, true},
		{"department admin manages own department", NewActor(2, models.RoleDepartmentAdmin, deptID(10)), 10, true},
		{"department admin denied other department", NewActor(2, models.RoleDepartmentAdmin, deptID(10)), 11, false},
		{"department admin without department denied", NewActor(3, models.RoleDepartmentAdmin, nil), 10, false},
		{"student never manages", NewActor(4, models.RoleStudent, deptID(10)), 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.actor.ManagesDepartment(tt.departmentID))
		})
	}
}

func TestRoleLabel(t *testing.T) {
	assert.Equal(t, "Student", RoleLabel(models.RoleStudent))
	assert.Equal(t, "Department Admin", RoleLabel(models.RoleDepartmentAdmin))
	assert.Equal(t, "Super Admin", RoleLabel(models.RoleSuperAdmin))
	assert.Equal(t, "Anonymous", RoleLabel(models.RoleType("NOBODY")))
}
