package services

import (
	"context"
	"slices"

	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/policy"
	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// QuestionnaireService handles questionnaire authoring by admins and
// self-service answering by enrolled students.
type QuestionnaireService struct {
	questionnaireRepo *repositories.QuestionnaireRepository
	programRepo       *repositories.ProgramRepository
	enrollmentRepo    *repositories.EnrollmentRepository

	questionnairePolicy policy.QuestionnairePolicy
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(
	questionnaireRepo *repositories.QuestionnaireRepository,
	programRepo *repositories.ProgramRepository,
	enrollmentRepo *repositories.EnrollmentRepository,
) *QuestionnaireService {
	return &QuestionnaireService{
		questionnaireRepo: questionnaireRepo,
		programRepo:       programRepo,
		enrollmentRepo:    enrollmentRepo,
	}
}

func buildQuestions(reqs []dto.QuestionRequest) ([]*models.Question, error) {
	questions := make([]*models.Question, 0, len(reqs))
	for _, q := range reqs {
		kind := models.QuestionKind(q.Kind)
		if kind == models.QuestionChoice && len(q.Choices) < 2 {
			return nil, apperrors.NewBadRequestError("choice questions need at least two choices")
		}
		questions = append(questions, &models.Question{
			Prompt:  q.Prompt,
			Kind:    kind,
			Choices: q.Choices,
		})
	}
	return questions, nil
}

// Create authors a questionnaire under a program the actor administers
func (s *QuestionnaireService) Create(ctx context.Context, actor policy.Actor, req *dto.CreateQuestionnaireRequest) (*models.Questionnaire, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, req.ProgramID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	questionnaire := &models.Questionnaire{
		ProgramID: req.ProgramID,
		Title:     req.Title,
		Questions: questions,
	}

	return s.questionnaireRepo.Create(ctx, questionnaire)
}

// requireAccess loads a questionnaire and checks the actor may read it:
// admins through department scope, students through enrollment.
func (s *QuestionnaireService) requireAccess(ctx context.Context, actor policy.Actor, id int64) (*models.Questionnaire, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}

	questionnaire, err := s.questionnaireRepo.GetWithQuestions(ctx, id)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, questionnaire.ProgramID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		if !actor.ManagesDepartment(program.DepartmentID) {
			return nil, apperrors.ErrPermissionDenied
		}
		return questionnaire, nil
	}

	if !s.questionnairePolicy.Show(actor) {
		return nil, apperrors.ErrPermissionDenied
	}

	enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, questionnaire.ProgramID, actor.UserID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, apperrors.ErrNotEnrolled
	}

	return questionnaire, nil
}

// GetForStudent retrieves a questionnaire with the acting student's own
// answers attached.
func (s *QuestionnaireService) GetForStudent(ctx context.Context, actor policy.Actor, id int64) (*dto.QuestionnaireResponse, error) {
	questionnaire, err := s.requireAccess(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	answers := map[int64]string{}
	if actor.IsStudent() {
		answers, err = s.questionnaireRepo.GetAnswers(ctx, id, actor.UserID)
		if err != nil {
			return nil, err
		}
	}

	resp := dto.FromQuestionnaire(questionnaire, answers)
	return &resp, nil
}

// ListForProgram retrieves a program's questionnaires
func (s *QuestionnaireService) ListForProgram(ctx context.Context, actor policy.Actor, programID int64) ([]*models.Questionnaire, error) {
	if !actor.Authenticated() {
		return nil, apperrors.ErrUnauthenticated
	}

	program, err := s.programRepo.GetByID(ctx, programID)
	if err != nil {
		return nil, err
	}

	if actor.IsAdmin() {
		if !actor.ManagesDepartment(program.DepartmentID) {
			return nil, apperrors.ErrPermissionDenied
		}
	} else {
		if !s.questionnairePolicy.Index(actor) {
			return nil, apperrors.ErrPermissionDenied
		}
		enrolled, err := s.enrollmentRepo.IsEnrolled(ctx, programID, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !enrolled {
			return nil, apperrors.ErrNotEnrolled
		}
	}

	return s.questionnaireRepo.ListByProgram(ctx, programID)
}

// SubmitAnswers saves a student's answers. Answers to questions outside the
// questionnaire are rejected; choice answers must match one of the
// question's choices.
func (s *QuestionnaireService) SubmitAnswers(ctx context.Context, actor policy.Actor, questionnaireID int64, req *dto.SubmitAnswersRequest) error {
	if err := authorize(actor, s.questionnairePolicy.Update(actor)); err != nil {
		return err
	}

	questionnaire, err := s.requireAccess(ctx, actor, questionnaireID)
	if err != nil {
		return err
	}

	byID := make(map[int64]*models.Question, len(questionnaire.Questions))
	for _, q := range questionnaire.Questions {
		byID[q.ID] = q
	}

	answers := make([]*models.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		question, ok := byID[a.QuestionID]
		if !ok {
			return apperrors.ErrQuestionNotFound
		}
		if question.Kind == models.QuestionChoice && !slices.Contains(question.Choices, a.Body) {
			return apperrors.NewBadRequestError("answer is not one of the question's choices")
		}
		answers = append(answers, &models.Answer{QuestionID: a.QuestionID, Body: a.Body})
	}

	return s.questionnaireRepo.SaveAnswers(ctx, actor.UserID, answers)
}

// Update rewrites a questionnaire the actor administers
func (s *QuestionnaireService) Update(ctx context.Context, actor policy.Actor, id int64, req *dto.CreateQuestionnaireRequest) (*models.Questionnaire, error) {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return nil, err
	}

	existing, err := s.questionnaireRepo.GetWithQuestions(ctx, id)
	if err != nil {
		return nil, err
	}

	program, err := s.programRepo.GetByID(ctx, existing.ProgramID)
	if err != nil {
		return nil, err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return nil, apperrors.ErrPermissionDenied
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	questionnaire := &models.Questionnaire{
		ID:        id,
		ProgramID: existing.ProgramID,
		Title:     req.Title,
		Questions: questions,
	}

	if err := s.questionnaireRepo.Update(ctx, questionnaire); err != nil {
		return nil, err
	}

	return questionnaire, nil
}

// Delete removes a questionnaire the actor administers
func (s *QuestionnaireService) Delete(ctx context.Context, actor policy.Actor, id int64) error {
	if err := authorize(actor, actor.IsAdmin()); err != nil {
		return err
	}

	questionnaire, err := s.questionnaireRepo.GetWithQuestions(ctx, id)
	if err != nil {
		return err
	}

	program, err := s.programRepo.GetByID(ctx, questionnaire.ProgramID)
	if err != nil {
		return err
	}
	if !actor.ManagesDepartment(program.DepartmentID) {
		return apperrors.ErrPermissionDenied
	}

	return s.questionnaireRepo.Delete(ctx, id)
}
