package handlers

import (
	"net/http"
	"strconv"

	"classroom-api/pkg/docstore"

	"github.com/gin-gonic/gin"
)

type TranscriptHandler struct {
	archive *docstore.Client
}

func NewTranscriptHandler(archive *docstore.Client) *TranscriptHandler {
	return &TranscriptHandler{archive: archive}
}

// List returns the most recently archived transcripts.
func (h *TranscriptHandler) List(c *gin.Context) {
	limit := int64(20)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	docs, err := h.archive.ListTranscripts(c.Request.Context(), limit)
	if err != nil {
		respondWithError(c, err, "Failed to list transcripts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcripts": docs})
}
