package repositories

import (
	"context"

	"classroom-api/internal/models"
	"classroom-api/pkg/errors"
	"classroom-api/pkg/postgres"

	"github.com/google/uuid"
)

type LeaderboardRepository struct {
	db *postgres.DB
}

func NewLeaderboardRepository(db *postgres.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

// ListByRoom returns students and their aggregate scores for a room, highest
// score first.
func (r *LeaderboardRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT u.id, u.display_name, sr.score
		FROM student_room sr
		JOIN app_user u ON u.id = sr.student_id
		WHERE sr.room_id = $1
		ORDER BY sr.score DESC, u.display_name ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, roomID)
	if err != nil {
		return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to list leaderboard", errors.ErrInternalServer.Status)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.StudentID, &e.DisplayName, &e.Score); err != nil {
			return nil, errors.WrapError(err, "INTERNAL_ERROR", "Failed to scan leaderboard entry", errors.ErrInternalServer.Status)
		}
		entries = append(entries, e)
	}

	return entries, nil
}
