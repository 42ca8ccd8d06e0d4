package handlers

import (
	"fmt"
	"net/http"

	"classroom-api/internal/services"
	"classroom-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LeaderboardHandler struct {
	leaderboardService *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService}
}

func (h *LeaderboardHandler) List(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid room id",
		})
		return
	}

	entries, err := h.leaderboardService.ListByRoom(c.Request.Context(), roomID)
	if err != nil {
		respondWithError(c, err, "Failed to load leaderboard")
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// Export streams the room leaderboard as an xlsx workbook.
func (h *LeaderboardHandler) Export(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid room id",
		})
		return
	}

	buf, err := h.leaderboardService.ExportXLSX(c.Request.Context(), roomID)
	if err != nil {
		respondWithError(c, err, "Failed to export leaderboard")
		return
	}

	filename := fmt.Sprintf("leaderboard-%s.xlsx", roomID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
