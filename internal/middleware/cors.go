package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware configures Cross-Origin Resource Sharing for browser clients of the
// config client. clientURLs is the server.client_url setting: one origin or a
// comma-separated list. Blank entries are ignored.
func CORSMiddleware(clientURLs string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: splitOrigins(clientURLs),

		// DELETE is needed for the cache eviction routes, POST for the actuator ones.
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},

		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,

		// How long browsers may cache a preflight answer.
		MaxAge: 12 * time.Hour,
	})
}

func splitOrigins(clientURLs string) []string {
	var origins []string
	for _, origin := range strings.Split(clientURLs, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
