package dto

import "github.com/lsa-mis/student-visit-api/internal/app/models"

// CreateQuestionnaireRequest represents an admin request to create a questionnaire
type CreateQuestionnaireRequest struct {
	ProgramID int64             `json:"programId" binding:"required,min=1"`
	Title     string            `json:"title" binding:"required"`
	Questions []QuestionRequest `json:"questions" binding:"dive"`
}

// QuestionRequest describes a single question
type QuestionRequest struct {
	Position int      `json:"position" binding:"min=0"`
	Prompt   string   `json:"prompt" binding:"required"`
	Kind     string   `json:"kind" binding:"required,oneof=TEXT CHOICE"`
	Choices  []string `json:"choices"`
}

// SubmitAnswersRequest is the student payload for answering a questionnaire
type SubmitAnswersRequest struct {
	Answers []AnswerRequest `json:"answers" binding:"required,min=1,dive"`
}

// AnswerRequest is one answer within a submission
type AnswerRequest struct {
	QuestionID int64  `json:"questionId" binding:"required,min=1"`
	Body       string `json:"body" binding:"required"`
}

// QuestionnaireResponse is the student view of a questionnaire with the
// student's own answers attached.
type QuestionnaireResponse struct {
	ID        int64              `json:"id"`
	ProgramID int64              `json:"programId"`
	Title     string             `json:"title"`
	Questions []QuestionResponse `json:"questions"`
}

// QuestionResponse is one question with the requesting student's answer, if any
type QuestionResponse struct {
	ID       int64    `json:"id"`
	Position int      `json:"position"`
	Prompt   string   `json:"prompt"`
	Kind     string   `json:"kind"`
	Choices  []string `json:"choices,omitempty"`
	Answer   *string  `json:"answer,omitempty"`
}

// FromQuestionnaire converts a questionnaire and the student's answers keyed
// by question ID into the response shape.
func FromQuestionnaire(q *models.Questionnaire, answers map[int64]string) QuestionnaireResponse {
	resp := QuestionnaireResponse{
		ID:        q.ID,
		ProgramID: q.ProgramID,
		Title:     q.Title,
		Questions: make([]QuestionResponse, 0, len(q.Questions)),
	}
	for _, question := range q.Questions {
		qr := QuestionResponse{
			ID:       question.ID,
			Position: question.Position,
			Prompt:   question.Prompt,
			Kind:     string(question.Kind),
			Choices:  question.Choices,
		}
		if body, ok := answers[question.ID]; ok {
			qr.Answer = &body
		}
		resp.Questions = append(resp.Questions, qr)
	}
	return resp
}
