package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"govhub/internal/apperr"
	"govhub/internal/middleware"
	"govhub/internal/models"
	"govhub/internal/services"
	"govhub/internal/store"
	"govhub/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	store store.Store
	votes *services.VoteService
}

func NewPostHandler(st store.Store, votes *services.VoteService) *PostHandler {
	return &PostHandler{store: st, votes: votes}
}

// List returns published posts, newest first, with live scores and comment
// counts.
// GET /api/posts?page=&limit=
func (h *PostHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	ctx := c.Request.Context()
	posts, total, err := h.store.ListPosts(ctx, (page-1)*limit, limit)
	if err != nil {
		Fail(c, apperr.Internal("failed to fetch posts", err))
		return
	}

	for i := range posts {
		if posts[i].Score, err = h.votes.Score(ctx, models.TargetPost, posts[i].ID); err != nil {
			Fail(c, apperr.Internal("failed to compute score", err))
			return
		}
		count, err := h.store.CountComments(ctx, posts[i].ID)
		if err != nil {
			Fail(c, apperr.Internal("failed to count comments", err))
			return
		}
		posts[i].CommentCount = int(count)
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	c.JSON(http.StatusOK, gin.H{
		"posts": posts,
		"pagination": gin.H{
			"page":       page,
			"limit":      limit,
			"total":      total,
			"totalPages": totalPages,
		},
	})
}

// Get returns a single post by id, with rendered content and live score.
// GET /api/posts/:id
func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.store.GetPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.failPost(c, err)
		return
	}
	h.respondPost(c, post)
}

// GetBySlug returns a single post by slug.
// GET /api/posts/slug/:slug
func (h *PostHandler) GetBySlug(c *gin.Context) {
	post, err := h.store.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.failPost(c, err)
		return
	}
	h.respondPost(c, post)
}

func (h *PostHandler) respondPost(c *gin.Context, post *models.Post) {
	ctx := c.Request.Context()
	var err error
	if post.Score, err = h.votes.Score(ctx, models.TargetPost, post.ID); err != nil {
		Fail(c, apperr.Internal("failed to compute score", err))
		return
	}
	count, err := h.store.CountComments(ctx, post.ID)
	if err != nil {
		Fail(c, apperr.Internal("failed to count comments", err))
		return
	}
	post.CommentCount = int(count)

	c.JSON(http.StatusOK, gin.H{
		"post":        post,
		"contentHtml": utils.RenderMarkdown(post.Content),
	})
}

type postRequest struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	CoverImage string `json:"coverImage"`
	Content    string `json:"content"`
	Published  *bool  `json:"published"`
}

// Create adds a post. Admin only (enforced by the route group).
// POST /api/posts
func (h *PostHandler) Create(c *gin.Context) {
	claims := middleware.CurrentClaims(c)

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Slug) == "" || strings.TrimSpace(req.Content) == "" {
		Fail(c, apperr.InvalidInput("Missing required fields"))
		return
	}

	post := &models.Post{
		Title:      req.Title,
		Slug:       req.Slug,
		CoverImage: req.CoverImage,
		Content:    req.Content,
		Published:  true,
		AuthorID:   claims.UserID,
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := h.store.CreatePost(c.Request.Context(), post); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			Fail(c, apperr.ErrSlugTaken)
			return
		}
		Fail(c, apperr.Internal("failed to create post", err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// Update edits a post. Admin only.
// PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	post, err := h.store.GetPost(ctx, c.Param("id"))
	if err != nil {
		h.failPost(c, err)
		return
	}

	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, apperr.InvalidInput("Invalid request body"))
		return
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Slug != "" && req.Slug != post.Slug {
		if _, err := h.store.GetPostBySlug(ctx, req.Slug); err == nil {
			Fail(c, apperr.ErrSlugTaken)
			return
		}
		post.Slug = req.Slug
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if req.CoverImage != "" {
		post.CoverImage = req.CoverImage
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := h.store.UpdatePost(ctx, post); err != nil {
		Fail(c, apperr.Internal("failed to update post", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// Delete removes a post together with its comments and all their votes.
// Admin only.
// DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.store.DeletePost(c.Request.Context(), c.Param("id")); err != nil {
		h.failPost(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PostHandler) failPost(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		Fail(c, apperr.ErrPostNotFound)
		return
	}
	Fail(c, apperr.Internal("post lookup failed", err))
}
