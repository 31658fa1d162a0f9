package dto

// CreateVIPRequest represents a request to create a visiting faculty entry
type CreateVIPRequest struct {
	ProgramID int64  `json:"programId" binding:"required,min=1"`
	Name      string `json:"name" binding:"required"`
	Title     string `json:"title"`
	Email     string `json:"email" binding:"required,email"`
	Bio       string `json:"bio"`
}

// UpdateVIPRequest represents a request to update a visiting faculty entry
type UpdateVIPRequest struct {
	Name  string `json:"name" binding:"required"`
	Title string `json:"title"`
	Email string `json:"email" binding:"required,email"`
	Bio   string `json:"bio"`
}
