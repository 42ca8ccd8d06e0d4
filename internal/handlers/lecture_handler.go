package handlers

import (
	"net/http"

	"classroom-api/internal/services"
	"classroom-api/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LectureHandler struct {
	lectureService *services.LectureService
}

func NewLectureHandler(lectureService *services.LectureService) *LectureHandler {
	return &LectureHandler{lectureService: lectureService}
}

type createLectureRequest struct {
	RoomID   string `json:"room_id" binding:"required,uuid"`
	Title    string `json:"title" binding:"required"`
	FilePath string `json:"file_path" binding:"required"`
}

func (h *LectureHandler) Create(c *gin.Context) {
	var req createLectureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: err.Error(),
		})
		return
	}

	roomID, _ := uuid.Parse(req.RoomID)

	lecture, err := h.lectureService.CreateLecture(c.Request.Context(), roomID, req.Title, req.FilePath)
	if err != nil {
		respondWithError(c, err, "Failed to create lecture")
		return
	}

	c.JSON(http.StatusCreated, lecture)
}

func (h *LectureHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid lecture id",
		})
		return
	}

	lecture, err := h.lectureService.GetLecture(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err, "Failed to get lecture")
		return
	}

	c.JSON(http.StatusOK, lecture)
}

// Transcribe triggers the background transcription pipeline for a lecture.
// The response distinguishes "work is running, poll later" from "a run
// already completed, fetch the task sets".
func (h *LectureHandler) Transcribe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid lecture id",
		})
		return
	}

	inProgress, err := h.lectureService.StartTranscription(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err, "Failed to schedule transcription")
		return
	}

	if inProgress {
		c.JSON(http.StatusAccepted, gin.H{"message": "Tasks are being generated..."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tasks generated, please refresh page"})
}

func (h *LectureHandler) ListTaskSets(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ErrorResponse{
			Error:   errors.ErrValidation.Code,
			Message: "Invalid lecture id",
		})
		return
	}

	sets, err := h.lectureService.ListTaskSets(c.Request.Context(), id)
	if err != nil {
		respondWithError(c, err, "Failed to list task sets")
		return
	}

	c.JSON(http.StatusOK, gin.H{"task_sets": sets})
}
