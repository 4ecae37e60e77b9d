package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"vidshare/pkg/apperr"
	"vidshare/pkg/models"
	"vidshare/pkg/services"
)

const (
	TokenCookie = "token"
	userKey     = "User"
	identityKey = "Identity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect rejects requests without a valid session cookie.
func Protect(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(TokenCookie)
		if token == "" {
			c.Error(apperr.Unauthenticated("Not authorized, no token"))
			c.Abort()
			return
		}
		user, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.Error(err)
			c.Abort()
			return
		}
		setUser(c, user)
		c.Next()
	}
}

// Optional loads the user when a valid cookie is present and lets every request through.
func Optional(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, _ := c.Cookie(TokenCookie); token != "" {
			if user, err := a.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(userKey, user)
	c.Set(identityKey, services.IdentityOf(user))
}

// CurrentUser returns the user stored by Protect or Optional.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}

func CurrentIdentity(c *gin.Context) services.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(services.Identity); ok {
			return id
		}
	}
	return services.Identity{}
}
