package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/apperr"
	"vidshare/pkg/media"
	"vidshare/pkg/middleware"
	"vidshare/pkg/models"
	"vidshare/pkg/services"
)

const invalidVideoID = "Invalid video ID format"

type VideoHandler struct {
	videoService *services.VideoService
}

func NewVideoHandler(videoService *services.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

func (h *VideoHandler) RegisterRoutes(r *gin.RouterGroup, protect gin.HandlerFunc) {
	videos := r.Group("/video")
	{
		videos.GET("", h.ListVideos)
		videos.GET("/tags/top", h.TopTags)
		videos.GET("/tags/:tag", h.VideosByTag)
		videos.GET("/:id", h.GetVideo)

		videos.POST("/upload", protect, h.UploadVideo)
		videos.PUT("/:id", protect, h.EditVideo)
		videos.DELETE("/delete/:id", protect, h.DeleteVideo)
		videos.PUT("/:id/view", protect, h.AddView)
		videos.PUT("/:id/like", protect, h.react(true))
		videos.PUT("/:id/dislike", protect, h.react(false))
	}
}

// UploadVideo godoc
// @Summary Upload a video
// @Description Stores the file with a thumbnail and adds the video to the caller's channel
// @Tags videos
// @Accept multipart/form-data
// @Produce json
// @Param video formData file true "Video file"
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param tags formData []string false "Up to two tags"
// @Success 201 {object} models.Video
// @Failure 400 {object} map[string]interface{}
// @Failure 413 {object} map[string]interface{}
// @Router /video/upload [post]
func (h *VideoHandler) UploadVideo(c *gin.Context) {
	limitBody(c, media.MaxVideoBytes)
	if err := parseMultipart(c, media.VideoPolicy); err != nil {
		c.Error(err)
		return
	}
	up, closer, err := formFile(c, "video", media.VideoPolicy)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeAll(closer)
	if up == nil {
		c.Error(apperr.Validation("No Video Uploaded"))
		return
	}

	in := services.VideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        c.PostFormArray("tags"),
	}
	// A dropped client connection must not abort a half-written upload.
	ctx := context.WithoutCancel(c.Request.Context())
	video, err := h.videoService.Upload(ctx, middleware.CurrentIdentity(c), up, in)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Video uploaded successfully", "video": video})
}

// ListVideos godoc
// @Summary List videos
// @Tags videos
// @Produce json
// @Success 200 {array} services.VideoWithChannel
// @Router /video [get]
func (h *VideoHandler) ListVideos(c *gin.Context) {
	videos, err := h.videoService.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, videos)
}

// GetVideo godoc
// @Summary Get a video
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} models.Video
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /video/{id} [get]
func (h *VideoHandler) GetVideo(c *gin.Context) {
	id, ok := objectIDParam(c, "id", invalidVideoID)
	if !ok {
		return
	}
	video, err := h.videoService.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, video)
}

type editVideoRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Tags        []string `json:"tags"`
}

// EditVideo godoc
// @Summary Edit title, description or tags
// @Tags videos
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} models.Video
// @Failure 403 {object} map[string]interface{}
// @Router /video/{id} [put]
func (h *VideoHandler) EditVideo(c *gin.Context) {
	id, ok := objectIDParam(c, "id", invalidVideoID)
	if !ok {
		return
	}
	var req editVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperr.Validation("Invalid request body"))
		return
	}
	video, err := h.videoService.Edit(c.Request.Context(), middleware.CurrentIdentity(c), id, models.VideoPatch{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// DeleteVideo godoc
// @Summary Delete a video
// @Description Removes the stored file and thumbnail, then the record and its channel entry
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /video/delete/{id} [delete]
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	id, ok := objectIDParam(c, "id", invalidVideoID)
	if !ok {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.videoService.Delete(ctx, middleware.CurrentIdentity(c), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

// AddView godoc
// @Summary Count the caller as a viewer
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} map[string]interface{}
// @Router /video/{id}/view [put]
func (h *VideoHandler) AddView(c *gin.Context) {
	id, ok := objectIDParam(c, "id", invalidVideoID)
	if !ok {
		return
	}
	video, err := h.videoService.AddView(c.Request.Context(), middleware.CurrentIdentity(c), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"views": video.ViewCount()})
}

func (h *VideoHandler) react(like bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id", invalidVideoID)
		if !ok {
			return
		}
		video, err := h.videoService.React(c.Request.Context(), middleware.CurrentIdentity(c), id, like)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"likes": len(video.Likes), "dislikes": len(video.Dislikes)})
	}
}

// TopTags godoc
// @Summary Most used tags
// @Tags videos
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /video/tags/top [get]
func (h *VideoHandler) TopTags(c *gin.Context) {
	tags, err := h.videoService.TopTags(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// VideosByTag godoc
// @Summary Videos carrying a tag
// @Tags videos
// @Produce json
// @Param tag path string true "Tag"
// @Success 200 {array} services.TaggedVideo
// @Router /video/tags/{tag} [get]
func (h *VideoHandler) VideosByTag(c *gin.Context) {
	videos, err := h.videoService.ByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, videos)
}
