package models

// VIP is a visiting faculty/expert students can book appointments with
type VIP struct {
	ID        int64  `json:"id" db:"id"`
	ProgramID int64  `json:"programId" db:"program_id"`
	Name      string `json:"name" db:"name"`
	Title     string `json:"title" db:"title"`
	Email     string `json:"email" db:"email"`
	Bio       string `json:"bio,omitempty" db:"bio"`

	Program *Program `json:"program,omitempty"` // Relation, no db tag
}
