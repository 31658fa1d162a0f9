package dto

// RegisterRequest represents the student registration payload
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"visitor@umich.edu"`
	Password  string `json:"password" binding:"required,min=8" example:"s3cretpass"`
	FirstName string `json:"firstName" binding:"required" example:"John"`
	LastName  string `json:"lastName" binding:"required" example:"Doe"`
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the token refresh payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries an issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
	TokenType        string `json:"tokenType" example:"Bearer"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	RoleType     string `json:"roleType" enums:"STUDENT,DEPARTMENT_ADMIN,SUPER_ADMIN"`
	DepartmentID *int64 `json:"departmentId,omitempty"`
}
