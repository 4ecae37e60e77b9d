package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/media"
	"vidshare/pkg/middleware"
	"vidshare/pkg/services"
)

type ChannelHandler struct {
	channelService *services.ChannelService
}

func NewChannelHandler(channelService *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

func (h *ChannelHandler) RegisterRoutes(r *gin.RouterGroup, protect gin.HandlerFunc) {
	channels := r.Group("/channel")
	{
		channels.GET("/me", protect, h.CurrentChannel)
		channels.GET("/:id", h.GetChannel)
		channels.POST("/create", protect, h.CreateChannel)
	}
}

// CreateChannel godoc
// @Summary Create the caller's channel
// @Tags channels
// @Accept multipart/form-data
// @Produce json
// @Param channelName formData string true "Channel name"
// @Param description formData string true "Description"
// @Param channelAvatar formData file false "Avatar image"
// @Param channelBanner formData file false "Banner image"
// @Success 201 {object} models.Channel
// @Failure 400 {object} map[string]interface{}
// @Router /channel/create [post]
func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	limitBody(c, 2*media.MaxImageBytes)
	if err := parseMultipart(c, media.ImagePolicy); err != nil {
		c.Error(err)
		return
	}
	avatar, avatarCloser, err := formFile(c, "channelAvatar", media.ImagePolicy)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeAll(avatarCloser)
	banner, bannerCloser, err := formFile(c, "channelBanner", media.ImagePolicy)
	if err != nil {
		c.Error(err)
		return
	}
	defer closeAll(bannerCloser)

	ctx := context.WithoutCancel(c.Request.Context())
	channel, err := h.channelService.Create(ctx, middleware.CurrentIdentity(c), services.ChannelInput{
		Name:        c.PostForm("channelName"),
		Description: c.PostForm("description"),
		Avatar:      avatar,
		Banner:      banner,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Channel created successfully", "channel": channel})
}

// GetChannel godoc
// @Summary Get a channel
// @Tags channels
// @Produce json
// @Param id path string true "Channel ID"
// @Success 200 {object} models.Channel
// @Failure 404 {object} map[string]interface{}
// @Router /channel/{id} [get]
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	id, ok := objectIDParam(c, "id", "Invalid channel ID format")
	if !ok {
		return
	}
	channel, err := h.channelService.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, channel)
}

// CurrentChannel godoc
// @Summary Get the caller's channel
// @Tags channels
// @Produce json
// @Success 200 {object} models.Channel
// @Failure 404 {object} map[string]interface{}
// @Router /channel/me [get]
func (h *ChannelHandler) CurrentChannel(c *gin.Context) {
	channel, err := h.channelService.Current(c.Request.Context(), middleware.CurrentIdentity(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, channel)
}
