package models

import "time"

// Program represents a recruiting/visit program owned by a department
type Program struct {
	ID            int64     `json:"id" db:"id"`
	DepartmentID  int64     `json:"departmentId" db:"department_id"`
	Name          string    `json:"name" db:"name"`
	Code          string    `json:"code" db:"code"`
	VisitStartsOn time.Time `json:"visitStartsOn" db:"visit_starts_on"` // First day of the visit window
	VisitEndsOn   time.Time `json:"visitEndsOn" db:"visit_ends_on"`     // Last day of the visit window

	Department *Department `json:"department,omitempty"` // Relation, no db tag
}

// Enrollment links a student to a program
type Enrollment struct {
	ID        int64     `json:"id" db:"id"`
	ProgramID int64     `json:"programId" db:"program_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	User    *User    `json:"user,omitempty"`
	Program *Program `json:"program,omitempty"`
}
