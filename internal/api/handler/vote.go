package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/api/middleware"
	"github.com/imagegenhub/server/internal/domain"
	"github.com/imagegenhub/server/internal/service"
)

// VoteHandler handles the vote toggle endpoint.
type VoteHandler struct {
	votes *service.VoteService
}

// NewVoteHandler creates a new vote handler.
func NewVoteHandler(votes *service.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type voteRequest struct {
	VoteType string `json:"voteType" binding:"required"`
}

// Toggle handles POST /api/votes/:memeId.
func (h *VoteHandler) Toggle(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid vote type"})
		return
	}

	outcome, vote, err := h.votes.Toggle(
		c.Request.Context(),
		middleware.UserID(c),
		c.Param("memeId"),
		domain.VoteType(req.VoteType),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	switch outcome {
	case service.VoteRecorded:
		c.JSON(http.StatusCreated, gin.H{"message": "Vote recorded", "vote": vote})
	case service.VoteUpdated:
		c.JSON(http.StatusOK, gin.H{"message": "Vote updated", "vote": vote})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Vote removed"})
	}
}
