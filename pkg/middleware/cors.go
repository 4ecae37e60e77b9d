package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS lets the web client call the API with its session cookie.
func CORS(clientURL string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowCredentials = true
	config.AddAllowHeaders("Authorization")
	config.AddExposeHeaders("X-Request-ID")
	if clientURL == "" {
		config.AllowOriginFunc = func(string) bool { return true }
	} else {
		config.AllowOrigins = []string{clientURL}
	}
	return cors.New(config)
}
