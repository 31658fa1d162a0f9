package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/db"
	"github.com/lsa-mis/student-visit-api/internal/pkg/apperrors"
)

// QuestionnaireRepository handles questionnaires, their questions and answers
type QuestionnaireRepository struct {
	db *pgxpool.Pool
}

// NewQuestionnaireRepository creates a new questionnaire repository
func NewQuestionnaireRepository(db *pgxpool.Pool) *QuestionnaireRepository {
	return &QuestionnaireRepository{db: db}
}

// Create inserts a questionnaire with its questions in one transaction
func (r *QuestionnaireRepository) Create(ctx context.Context, q *models.Questionnaire) (*models.Questionnaire, error) {
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO questionnaires (program_id, title) VALUES ($1, $2) RETURNING id`,
			q.ProgramID, q.Title).Scan(&q.ID)
		if err != nil {
			if isForeignKeyViolation(err) {
				return apperrors.ErrProgramNotFound
			}
			return fmt.Errorf("error creating questionnaire: %w", err)
		}

		return insertQuestionsTx(ctx, tx, q.ID, q.Questions)
	})
	if err != nil {
		return nil, err
	}

	return q, nil
}

func insertQuestionsTx(ctx context.Context, tx pgx.Tx, questionnaireID int64, questions []*models.Question) error {
	query := `
		INSERT INTO questions (questionnaire_id, position, prompt, kind, choices)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	for i, question := range questions {
		question.QuestionnaireID = questionnaireID
		question.Position = i + 1
		err := tx.QueryRow(ctx, query,
			questionnaireID, question.Position, question.Prompt, question.Kind, question.Choices,
		).Scan(&question.ID)
		if err != nil {
			return fmt.Errorf("error creating question: %w", err)
		}
	}
	return nil
}

// GetWithQuestions retrieves a questionnaire and its questions in order
func (r *QuestionnaireRepository) GetWithQuestions(ctx context.Context, id int64) (*models.Questionnaire, error) {
	var q models.Questionnaire
	err := r.db.QueryRow(ctx,
		`SELECT id, program_id, title FROM questionnaires WHERE id = $1`, id).
		Scan(&q.ID, &q.ProgramID, &q.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQuestionnaireNotFound
		}
		return nil, fmt.Errorf("error retrieving questionnaire: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, questionnaire_id, position, prompt, kind, choices
		FROM questions
		WHERE questionnaire_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var question models.Question
		if err := rows.Scan(
			&question.ID, &question.QuestionnaireID, &question.Position,
			&question.Prompt, &question.Kind, &question.Choices,
		); err != nil {
			return nil, err
		}
		q.Questions = append(q.Questions, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &q, nil
}

// ListByProgram retrieves a program's questionnaires without questions
func (r *QuestionnaireRepository) ListByProgram(ctx context.Context, programID int64) ([]*models.Questionnaire, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, program_id, title FROM questionnaires WHERE program_id = $1 ORDER BY title`, programID)
	if err != nil {
		return nil, fmt.Errorf("error listing questionnaires: %w", err)
	}
	defer rows.Close()

	var questionnaires []*models.Questionnaire
	for rows.Next() {
		var q models.Questionnaire
		if err := rows.Scan(&q.ID, &q.ProgramID, &q.Title); err != nil {
			return nil, err
		}
		questionnaires = append(questionnaires, &q)
	}

	return questionnaires, rows.Err()
}

// Update rewrites a questionnaire's title and replaces its question set.
// Replacing cascades away old answers, matching a form redefinition.
func (r *QuestionnaireRepository) Update(ctx context.Context, q *models.Questionnaire) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE questionnaires SET title = $1 WHERE id = $2`, q.Title, q.ID)
		if err != nil {
			return fmt.Errorf("error updating questionnaire: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrQuestionnaireNotFound
		}

		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE questionnaire_id = $1`, q.ID); err != nil {
			return fmt.Errorf("error clearing questions: %w", err)
		}

		return insertQuestionsTx(ctx, tx, q.ID, q.Questions)
	})
}

// Delete removes a questionnaire and its questions
func (r *QuestionnaireRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM questionnaires WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting questionnaire: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrQuestionnaireNotFound
	}

	return nil
}

// SaveAnswers upserts a student's answers keyed by question
func (r *QuestionnaireRepository) SaveAnswers(ctx context.Context, userID int64, answers []*models.Answer) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		query := `
			INSERT INTO answers (question_id, user_id, body)
			VALUES ($1, $2, $3)
			ON CONFLICT (question_id, user_id) DO UPDATE SET body = EXCLUDED.body
			RETURNING id
		`
		for _, answer := range answers {
			answer.UserID = userID
			err := tx.QueryRow(ctx, query, answer.QuestionID, userID, answer.Body).Scan(&answer.ID)
			if err != nil {
				if isForeignKeyViolation(err) {
					return apperrors.ErrQuestionNotFound
				}
				return fmt.Errorf("error saving answer: %w", err)
			}
		}
		return nil
	})
}

// GetAnswers retrieves a student's answers for a questionnaire keyed by
// question ID.
func (r *QuestionnaireRepository) GetAnswers(ctx context.Context, questionnaireID, userID int64) (map[int64]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.question_id, a.body
		FROM answers a
		JOIN questions q ON q.id = a.question_id
		WHERE q.questionnaire_id = $1 AND a.user_id = $2
	`, questionnaireID, userID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving answers: %w", err)
	}
	defer rows.Close()

	answers := make(map[int64]string)
	for rows.Next() {
		var questionID int64
		var body string
		if err := rows.Scan(&questionID, &body); err != nil {
			return nil, err
		}
		answers[questionID] = body
	}

	return answers, rows.Err()
}
