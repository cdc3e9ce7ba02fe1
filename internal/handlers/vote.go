package handlers

import (
	"net/http"

	"govhub/internal/apperr"
	"govhub/internal/middleware"
	"govhub/internal/models"
	"govhub/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

type castVoteRequest struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Value      int    `json:"value"`
}

// Cast records or toggles a vote and returns the fresh score.
// POST /api/votes
func (h *VoteHandler) Cast(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.TargetType == "" || req.TargetID == "" {
		Fail(c, apperr.InvalidInput("Missing required fields"))
		return
	}

	vote, score, err := h.votes.Cast(c.Request.Context(), claims.UserID, req.TargetType, req.TargetID, req.Value)
	if err != nil {
		Fail(c, err)
		return
	}

	// vote is null when the cast toggled the row off.
	var payload interface{}
	if vote != nil {
		payload = vote
	}
	c.JSON(http.StatusOK, gin.H{"vote": payload, "score": score})
}

// Remove deletes the caller's vote for the target.
// DELETE /api/votes?targetType=&targetId=
func (h *VoteHandler) Remove(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	targetType := c.Query("targetType")
	targetID := c.Query("targetId")
	if targetType == "" || targetID == "" {
		Fail(c, apperr.InvalidInput("Missing required parameters"))
		return
	}

	score, err := h.votes.Remove(c.Request.Context(), claims.UserID, targetType, targetID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"score": score})
}

// ListUserVotes returns the caller's votes, empty for anonymous requests.
// GET /api/votes/user?targetType=&targetId=
func (h *VoteHandler) ListUserVotes(c *gin.Context) {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		c.JSON(http.StatusOK, gin.H{"votes": []models.Vote{}})
		return
	}

	votes, err := h.votes.ListUserVotes(c.Request.Context(), claims.UserID, c.Query("targetType"), c.Query("targetId"))
	if err != nil {
		Fail(c, apperr.Internal("failed to fetch votes", err))
		return
	}
	if votes == nil {
		votes = []models.Vote{}
	}
	c.JSON(http.StatusOK, gin.H{"votes": votes})
}
