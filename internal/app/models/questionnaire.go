package models

// QuestionKind distinguishes free-text from single-choice questions
type QuestionKind string

const (
	QuestionText   QuestionKind = "TEXT"
	QuestionChoice QuestionKind = "CHOICE"
)

// Questionnaire groups questions for a program
type Questionnaire struct {
	ID        int64  `json:"id" db:"id"`
	ProgramID int64  `json:"programId" db:"program_id"`
	Title     string `json:"title" db:"title"`

	Questions []*Question `json:"questions,omitempty"` // Relation, no db tag
}

// Question is a single prompt within a questionnaire
type Question struct {
	ID              int64        `json:"id" db:"id"`
	QuestionnaireID int64        `json:"questionnaireId" db:"questionnaire_id"`
	Position        int          `json:"position" db:"position"`
	Prompt          string       `json:"prompt" db:"prompt"`
	Kind            QuestionKind `json:"kind" db:"kind"`
	Choices         []string     `json:"choices,omitempty" db:"choices"` // Only for CHOICE questions
}

// Answer is a student's response to a question
type Answer struct {
	ID         int64  `json:"id" db:"id"`
	QuestionID int64  `json:"questionId" db:"question_id"`
	UserID     int64  `json:"userId" db:"user_id"`
	Body       string `json:"body" db:"body"`
}
