package repositories

import (
	"context"

	"classroom-api/internal/models"
	"classroom-api/pkg/errors"
	"classroom-api/pkg/postgres"

	"github.com/google/uuid"
)

type TaskRepository struct {
	db *postgres.DB
}

func NewTaskRepository(db *postgres.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// InsertTaskSet persists one generated task set and its tasks in a single
// transaction so a half-written set is never visible.
func (r *TaskRepository) InsertTaskSet(ctx context.Context, lectureID uuid.UUID, generated []models.GeneratedTask) (uuid.UUID, error) {
	taskSetID := uuid.New()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to begin transaction", errors.ErrInternalServer.Status)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO task_set (id, lecture_id, created_at)
		VALUES ($1, $2, NOW())
	`, taskSetID, lectureID)
	if err != nil {
		return uuid.Nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to create task set", errors.ErrInternalServer.Status)
	}

	for _, t := range generated {
		_, err = tx.Exec(ctx, `
			INSERT INTO task (id, task_set_id, question, answer, options)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New(), taskSetID, t.Question, t.Answer, t.Options)
		if err != nil {
			return uuid.Nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to insert task", errors.ErrInternalServer.Status)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to commit task set", errors.ErrInternalServer.Status)
	}

	return taskSetID, nil
}

func (r *TaskRepository) GetTaskSet(ctx context.Context, taskSetID uuid.UUID) (*models.TaskSet, error) {
	taskSet := &models.TaskSet{}

	query := `
		SELECT id, lecture_id, created_at
		FROM task_set
		WHERE id = $1
	`
	err := r.db.Pool.QueryRow(ctx, query, taskSetID).Scan(
		&taskSet.ID, &taskSet.LectureID, &taskSet.CreatedAt,
	)
	if err != nil {
		return nil, errors.ErrNotFound
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, question, answer, options
		FROM task
		WHERE task_set_id = $1
	`, taskSetID)
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to list tasks", errors.ErrInternalServer.Status)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Question, &t.Answer, &t.Options); err != nil {
			return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to scan task", errors.ErrInternalServer.Status)
		}
		taskSet.Tasks = append(taskSet.Tasks, t)
	}

	return taskSet, nil
}

func (r *TaskRepository) ListTaskSetsByLecture(ctx context.Context, lectureID uuid.UUID) ([]*models.TaskSet, error) {
	var sets []*models.TaskSet

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, lecture_id, created_at
		FROM task_set
		WHERE lecture_id = $1
		ORDER BY created_at DESC
	`, lectureID)
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to list task sets", errors.ErrInternalServer.Status)
	}
	defer rows.Close()

	for rows.Next() {
		ts := &models.TaskSet{}
		if err := rows.Scan(&ts.ID, &ts.LectureID, &ts.CreatedAt); err != nil {
			return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to scan task set", errors.ErrInternalServer.Status)
		}
		sets = append(sets, ts)
	}

	return sets, nil
}
