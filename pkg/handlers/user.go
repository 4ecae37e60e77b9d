package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/apperr"
	"vidshare/pkg/middleware"
	"vidshare/pkg/services"
)

// CookieConfig controls how the session cookie is issued.
type CookieConfig struct {
	TTL        time.Duration
	Production bool
}

type UserHandler struct {
	userService *services.UserService
	cookie      CookieConfig
}

func NewUserHandler(userService *services.UserService, cookie CookieConfig) *UserHandler {
	return &UserHandler{userService: userService, cookie: cookie}
}

func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup, optional gin.HandlerFunc) {
	users := r.Group("/user")
	{
		users.GET("", optional, h.CurrentUser)
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/logout", h.Logout)
	}
}

// Register godoc
// @Summary Create an account
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.Credentials true "username, email, password"
// @Success 201 {object} services.Session
// @Failure 400 {object} map[string]interface{}
// @Router /user/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var creds services.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.Error(apperr.Validation("Invalid request"))
		return
	}
	sess, token, err := h.userService.Register(c.Request.Context(), creds)
	if err != nil {
		c.Error(err)
		return
	}
	h.setSession(c, token)
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": sess})
}

// Login godoc
// @Summary Log in with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body services.Credentials true "email, password"
// @Success 200 {object} services.Session
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /user/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var creds services.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.Error(apperr.Validation("Invalid request"))
		return
	}
	sess, token, err := h.userService.Login(c.Request.Context(), creds)
	if err != nil {
		c.Error(err)
		return
	}
	h.setSession(c, token)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": sess})
}

// Logout godoc
// @Summary Clear the session cookie
// @Tags users
// @Success 200 {object} map[string]interface{}
// @Router /user/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	h.writeCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CurrentUser godoc
// @Summary The logged in user, or null
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /user [get]
func (h *UserHandler) CurrentUser(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": h.userService.Current(c.Request.Context(), user)})
}

func (h *UserHandler) setSession(c *gin.Context, token string) {
	h.writeCookie(c, token, int(h.cookie.TTL.Seconds()))
}

func (h *UserHandler) writeCookie(c *gin.Context, value string, maxAge int) {
	if h.cookie.Production {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(middleware.TokenCookie, value, maxAge, "/", "", h.cookie.Production, true)
}
