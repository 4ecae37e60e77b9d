package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/middleware"
	"vidshare/pkg/services"
)

type Services struct {
	Users    *services.UserService
	Channels *services.ChannelService
	Videos   *services.VideoService
	Comments *services.CommentService
}

type RouterConfig struct {
	ClientURL string
	Cookie    CookieConfig
}

type Router struct {
	engine         *gin.Engine
	userHandler    *UserHandler
	channelHandler *ChannelHandler
	videoHandler   *VideoHandler
	commentHandler *CommentHandler
	protect        gin.HandlerFunc
	optional       gin.HandlerFunc
}

func NewRouter(svc Services, cfg RouterConfig) *Router {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.PanicRecovery())
	engine.Use(middleware.CORS(cfg.ClientURL))
	engine.Use(middleware.Logger())
	engine.Use(middleware.ErrorHandler())

	return &Router{
		engine:         engine,
		userHandler:    NewUserHandler(svc.Users, cfg.Cookie),
		channelHandler: NewChannelHandler(svc.Channels),
		videoHandler:   NewVideoHandler(svc.Videos),
		commentHandler: NewCommentHandler(svc.Comments),
		protect:        middleware.Protect(svc.Users),
		optional:       middleware.Optional(svc.Users),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api")
	r.userHandler.RegisterRoutes(api, r.optional)
	r.channelHandler.RegisterRoutes(api, r.protect)
	r.videoHandler.RegisterRoutes(api, r.protect)
	r.commentHandler.RegisterRoutes(api, r.protect)
}

func (r *Router) Handler() http.Handler {
	return r.engine
}
