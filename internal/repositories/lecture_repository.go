package repositories

import (
	"context"

	"classroom-api/internal/models"
	"classroom-api/pkg/errors"
	"classroom-api/pkg/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LectureRepository struct {
	db *postgres.DB
}

func NewLectureRepository(db *postgres.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

func (r *LectureRepository) Create(ctx context.Context, lecture *models.Lecture) error {
	query := `
		INSERT INTO lecture (id, room_id, title, file_path, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		lecture.ID, lecture.RoomID, lecture.Title, lecture.FilePath,
	).Scan(&lecture.CreatedAt)

	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to create lecture", errors.ErrInternalServer.Status)
	}

	return nil
}

func (r *LectureRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Lecture, error) {
	lecture := &models.Lecture{}

	query := `
		SELECT id, room_id, title, file_path, transcript, created_at
		FROM lecture
		WHERE id = $1
	`

	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&lecture.ID, &lecture.RoomID, &lecture.Title,
		&lecture.FilePath, &lecture.Transcript, &lecture.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to get lecture", errors.ErrInternalServer.Status)
	}

	return lecture, nil
}

func (r *LectureRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*models.Lecture, error) {
	var lectures []*models.Lecture

	query := `
		SELECT id, room_id, title, file_path, transcript, created_at
		FROM lecture
		WHERE room_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to list lectures", errors.ErrInternalServer.Status)
	}
	defer rows.Close()

	for rows.Next() {
		lecture := &models.Lecture{}
		err := rows.Scan(
			&lecture.ID, &lecture.RoomID, &lecture.Title,
			&lecture.FilePath, &lecture.Transcript, &lecture.CreatedAt,
		)
		if err != nil {
			return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to scan lecture", errors.ErrInternalServer.Status)
		}
		lectures = append(lectures, lecture)
	}

	return lectures, nil
}

// AddTranscript stores the aggregated transcript produced by the pipeline.
func (r *LectureRepository) AddTranscript(ctx context.Context, id uuid.UUID, transcript string) error {
	query := `
		UPDATE lecture SET transcript = $1
		WHERE id = $2
	`

	tag, err := r.db.Pool.Exec(ctx, query, transcript, id)
	if err != nil {
		return errors.WrapError(err, "INTERNAL_ERROR", "Failed to store transcript", errors.ErrInternalServer.Status)
	}
	if tag.RowsAffected() == 0 {
		return errors.ErrNotFound
	}
	return nil
}
