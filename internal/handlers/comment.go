package handlers

import (
	"errors"
	"net/http"
	"strings"

	"govhub/internal/apperr"
	"govhub/internal/middleware"
	"govhub/internal/models"
	"govhub/internal/services"
	"govhub/internal/store"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	store store.Store
	votes *services.VoteService
}

func NewCommentHandler(st store.Store, votes *services.VoteService) *CommentHandler {
	return &CommentHandler{store: st, votes: votes}
}

// List returns a post's comments, oldest first, with live scores.
// GET /api/comments?postId=
func (h *CommentHandler) List(c *gin.Context) {
	postID := c.Query("postId")
	if postID == "" {
		Fail(c, apperr.InvalidInput("Missing postId parameter"))
		return
	}

	ctx := c.Request.Context()
	comments, err := h.store.ListComments(ctx, postID)
	if err != nil {
		Fail(c, apperr.Internal("failed to fetch comments", err))
		return
	}
	for i := range comments {
		if comments[i].Score, err = h.votes.Score(ctx, models.TargetComment, comments[i].ID); err != nil {
			Fail(c, apperr.Internal("failed to compute score", err))
			return
		}
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

type createCommentRequest struct {
	PostID string `json:"postId"`
	Text   string `json:"text"`
}

// Create adds a comment to an existing post.
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PostID == "" || strings.TrimSpace(req.Text) == "" {
		Fail(c, apperr.InvalidInput("Missing required fields"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetPost(ctx, req.PostID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(c, apperr.ErrPostNotFound)
			return
		}
		Fail(c, apperr.Internal("post lookup failed", err))
		return
	}

	comment := &models.Comment{
		Text:   strings.TrimSpace(req.Text),
		PostID: req.PostID,
		UserID: claims.UserID,
	}
	if err := h.store.CreateComment(ctx, comment); err != nil {
		Fail(c, apperr.Internal("failed to create comment", err))
		return
	}
	if user, err := h.store.GetUserByID(ctx, claims.UserID); err == nil {
		comment.User = *user
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// Delete removes a comment and its votes. Allowed for the comment's owner
// or an admin.
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	ctx := c.Request.Context()
	comment, err := h.store.GetComment(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			Fail(c, apperr.ErrCommentNotFound)
			return
		}
		Fail(c, apperr.Internal("comment lookup failed", err))
		return
	}

	if comment.UserID != claims.UserID && !claims.IsAdmin {
		Fail(c, apperr.Forbidden("Forbidden: You can only delete your own comments"))
		return
	}

	if err := h.store.DeleteComment(ctx, comment.ID); err != nil {
		Fail(c, apperr.Internal("failed to delete comment", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
