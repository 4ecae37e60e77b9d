package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/apperr"
	"vidshare/pkg/middleware"
	"vidshare/pkg/services"
)

const invalidCommentID = "Invalid comment ID format"

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) RegisterRoutes(r *gin.RouterGroup, protect gin.HandlerFunc) {
	comments := r.Group("/comment")
	{
		comments.GET("", h.ListComments)
		comments.POST("", protect, h.AddComment)
		comments.PUT("/:id", protect, h.EditComment)
		comments.DELETE("/:id", protect, h.DeleteComment)
	}
}

type commentRequest struct {
	Text string `json:"text"`
}

// AddComment godoc
// @Summary Comment on a video
// @Tags comments
// @Accept json
// @Produce json
// @Param videoId query string true "Video ID"
// @Success 201 {object} models.Comment
// @Router /comment [post]
func (h *CommentHandler) AddComment(c *gin.Context) {
	videoID, ok := objectIDQuery(c, "videoId", invalidVideoID)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation("Invalid request body"))
		return
	}
	comment, err := h.commentService.Add(c.Request.Context(), middleware.CurrentIdentity(c), videoID, req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments godoc
// @Summary Comments of a video, newest first
// @Tags comments
// @Produce json
// @Param videoId query string true "Video ID"
// @Success 200 {array} services.CommentView
// @Router /comment [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	videoID, ok := objectIDQuery(c, "videoId", invalidVideoID)
	if !ok {
		return
	}
	comments, err := h.commentService.List(c.Request.Context(), videoID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// EditComment godoc
// @Summary Edit an own comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} models.Comment
// @Failure 403 {object} map[string]interface{}
// @Router /comment/{id} [put]
func (h *CommentHandler) EditComment(c *gin.Context) {
	id, ok := objectIDParam(c, "id", invalidCommentID)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation("Invalid request body"))
		return
	}
	comment, err := h.commentService.Edit(c.Request.Context(), middleware.CurrentIdentity(c), id, req.Text)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary Delete an own comment
// @Tags comments
// @Produce json
// @Param id path string true "Comment ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /comment/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	id, ok := objectIDParam(c, "id", invalidCommentID)
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), middleware.CurrentIdentity(c), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
