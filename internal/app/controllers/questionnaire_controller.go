package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/models/dto"
	"github.com/lsa-mis/student-visit-api/internal/app/services"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// QuestionnaireController handles questionnaire authoring and answering
type QuestionnaireController struct {
	questionnaireService *services.QuestionnaireService
}

// NewQuestionnaireController creates a new QuestionnaireController
func NewQuestionnaireController(questionnaireService *services.QuestionnaireService) *QuestionnaireController {
	return &QuestionnaireController{questionnaireService: questionnaireService}
}

// Create handles questionnaire creation
// @Summary Create a questionnaire
// @Description Authors a questionnaire under a program the actor administers
// @Tags questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuestionnaireRequest true "Questionnaire"
// @Success 201 {object} dto.APIResponse{data=models.Questionnaire} "Questionnaire created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questionnaires [post]
func (c *QuestionnaireController) Create(ctx *gin.Context) {
	var req dto.CreateQuestionnaireRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	questionnaire, err := c.questionnaireService.Create(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusCreated, questionnaire)
}

// Get retrieves a questionnaire with the student's answers
// @Summary Get a questionnaire
// @Description Retrieves a questionnaire. Students get their own answers attached.
// @Tags questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Success 200 {object} dto.APIResponse{data=dto.QuestionnaireResponse} "Questionnaire"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Questionnaire not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questionnaires/{id} [get]
func (c *QuestionnaireController) Get(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	questionnaire, err := c.questionnaireService.GetForStudent(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, questionnaire)
}

// ListForProgram lists a program's questionnaires
// @Summary List program questionnaires
// @Description Lists the questionnaires in a program
// @Tags questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path int true "Program ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Questionnaire} "Questionnaires"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /programs/{id}/questionnaires [get]
func (c *QuestionnaireController) ListForProgram(ctx *gin.Context) {
	programID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	questionnaires, err := c.questionnaireService.ListForProgram(ctx, actor, programID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, questionnaires)
}

// SubmitAnswers saves a student's answers
// @Summary Submit questionnaire answers
// @Description Saves the authenticated student's answers. Resubmission overwrites previous answers.
// @Tags questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Param request body dto.SubmitAnswersRequest true "Answers"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Answers saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid answers"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Questionnaire or question not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questionnaires/{id}/answers [put]
func (c *QuestionnaireController) SubmitAnswers(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SubmitAnswersRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.questionnaireService.SubmitAnswers(ctx, actor, id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Answers saved")
}

// Update rewrites a questionnaire
// @Summary Update a questionnaire
// @Description Rewrites a questionnaire's title and questions. Existing answers are discarded.
// @Tags questionnaires
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Param request body dto.CreateQuestionnaireRequest true "Questionnaire"
// @Success 200 {object} dto.APIResponse{data=models.Questionnaire} "Questionnaire updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Questionnaire not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questionnaires/{id} [put]
func (c *QuestionnaireController) Update(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateQuestionnaireRequest
	if !bindJSON(ctx, &req) {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	questionnaire, err := c.questionnaireService.Update(ctx, actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondData(ctx, http.StatusOK, questionnaire)
}

// Delete removes a questionnaire
// @Summary Delete a questionnaire
// @Description Deletes a questionnaire and its questions
// @Tags questionnaires
// @Produce json
// @Security BearerAuth
// @Param id path int true "Questionnaire ID"
// @Success 200 {object} dto.APIResponse{data=dto.SuccessResponse} "Questionnaire deleted"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 404 {object} dto.ErrorResponse "Questionnaire not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /questionnaires/{id} [delete]
func (c *QuestionnaireController) Delete(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	actor := middleware.ActorFromContext(ctx)
	if err := c.questionnaireService.Delete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respondMessage(ctx, http.StatusOK, "Questionnaire deleted")
}
