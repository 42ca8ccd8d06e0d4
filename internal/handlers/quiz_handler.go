package handlers

import (
	"net/http"

	"classroom-api/internal/services"
	"classroom-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type QuizHandler struct {
	gradingService *services.GradingService
}

func NewQuizHandler(gradingService *services.GradingService) *QuizHandler {
	return &QuizHandler{gradingService: gradingService}
}

// Grade triggers background grading of one solution. Duplicate requests for
// the same quiz/solution pair never start a second grading run.
func (h *QuizHandler) Grade(c *gin.Context) {
	quizID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid quiz id",
		})
		return
	}

	solutionID, err := uuid.Parse(c.Param("solution_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid solution id",
		})
		return
	}

	inProgress, err := h.gradingService.StartGrading(c.Request.Context(), quizID, solutionID)
	if err != nil {
		respondWithError(c, err, "Failed to schedule grading")
		return
	}

	if inProgress {
		c.JSON(http.StatusAccepted, gin.H{"message": "Solution is being graded..."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Solution already graded"})
}
