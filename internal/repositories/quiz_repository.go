package repositories

import (
	"context"

	"classroom-api/internal/models"
	"classroom-api/pkg/errors"
	"classroom-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type QuizRepository struct {
	db *postgres.DB
}

func NewQuizRepository(db *postgres.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	quiz := &models.Quiz{}

	query := `
		SELECT id, room_id, title, rubric_content, answer_sheet_content, created_at
		FROM quiz
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&quiz.ID, &quiz.RoomID, &quiz.Title,
		&quiz.RubricContent, &quiz.AnswerSheetContent, &quiz.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to get quiz", errors.ErrInternalServer.Status)
	}

	return quiz, nil
}

func (r *QuizRepository) GetSolution(ctx context.Context, solutionID uuid.UUID) (*models.Solution, error) {
	solution := &models.Solution{}

	query := `
		SELECT id, quiz_id, student_id, solution_path, feedback, created_at
		FROM solution
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, solutionID).Scan(
		&solution.ID, &solution.QuizID, &solution.StudentID,
		&solution.SolutionPath, &solution.Feedback, &solution.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to get solution", errors.ErrInternalServer.Status)
	}

	return solution, nil
}

// UpdateSolutionFeedback records the grading worker's output.
func (r *QuizRepository) UpdateSolutionFeedback(ctx context.Context, solutionID uuid.UUID, feedback string) error {
	query := `
		UPDATE solution SET feedback = $1
		WHERE id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, feedback, solutionID)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to update solution feedback", errors.ErrInternalServer.Status)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}
