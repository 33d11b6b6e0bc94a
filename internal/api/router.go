package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bluesky/zoom/internal/middleware"
	"github.com/bluesky/zoom/pkg/api"
)

// NewRouter builds the gin engine shared by every service: request logging, panic
// recovery, optional CORS for clientURL, a /ping liveness route, then each API's routes.
func NewRouter(ginMode, clientURL string, logger *zap.Logger, apis ...api.API) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ginMode != "" {
		gin.SetMode(ginMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	if clientURL != "" {
		router.Use(middleware.CORSMiddleware(clientURL))
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	for _, a := range apis {
		a.RegisterRoutes(router)
	}
	return router
}
