package dto

import "time"

// CreateProgramRequest represents a request to create a program
type CreateProgramRequest struct {
	DepartmentID  int64     `json:"departmentId" binding:"required,min=1"`
	Name          string    `json:"name" binding:"required"`
	Code          string    `json:"code" binding:"required"`
	VisitStartsOn time.Time `json:"visitStartsOn" binding:"required"`
	VisitEndsOn   time.Time `json:"visitEndsOn" binding:"required"`
}

// UpdateProgramRequest represents a request to update a program
type UpdateProgramRequest struct {
	Name          string    `json:"name" binding:"required"`
	Code          string    `json:"code" binding:"required"`
	VisitStartsOn time.Time `json:"visitStartsOn" binding:"required"`
	VisitEndsOn   time.Time `json:"visitEndsOn" binding:"required"`
}

// CreateDepartmentRequest represents a request to create a department
type CreateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// UpdateDepartmentRequest represents a request to update a department
type UpdateDepartmentRequest struct {
	Name string `json:"name" binding:"required"`
	Code string `json:"code" binding:"required"`
}

// EnrollRequest represents a request to enroll a student into a program
type EnrollRequest struct {
	UserID int64 `json:"userId" binding:"required,min=1"`
}
