package handlers

import (
	"log"
	"net/http"

	"classroom-api/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondWithError renders an AppError with its own status, and hides
// anything else behind a 500.
func respondWithError(c *gin.Context, err error, fallbackMessage string) {
	if appErr, ok := err.(*errors.AppError); ok {
		c.JSON(appErr.Status, errors.ErrorResponse{
			Error:   appErr.Code,
			Message: appErr.Message,
		})
		return
	}

	log.Printf("%s: %v", fallbackMessage, err)
	c.JSON(http.StatusInternalServerError, errors.ErrorResponse{
		Error:   errors.ErrInternalServer.Code,
		Message: fallbackMessage,
	})
}

// Handlers holds all handler instances
type Handlers struct {
	Auth        *AuthHandler
	Lecture     *LectureHandler
	Quiz        *QuizHandler
	Leaderboard *LeaderboardHandler
	Transcript  *TranscriptHandler
	Health      *HealthHandler
}
