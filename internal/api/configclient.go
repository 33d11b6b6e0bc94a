package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bluesky/zoom/internal/core"
	"github.com/bluesky/zoom/pkg/cache"
)

// ConfigClientAPI serves the user lookup, profile and administrative routes.
type ConfigClientAPI struct {
	users    core.UserService
	admin    *core.AdminService
	gatherer prometheus.Gatherer
	logger   *zap.Logger
}

// NewConfigClientAPI wires the handlers. A nil gatherer disables /metrics.
func NewConfigClientAPI(users core.UserService, admin *core.AdminService, gatherer prometheus.Gatherer, logger *zap.Logger) *ConfigClientAPI {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigClientAPI{users: users, admin: admin, gatherer: gatherer, logger: logger}
}

func (a *ConfigClientAPI) RegisterRoutes(router *gin.Engine) {
	router.GET("/hello", a.hello)
	router.GET("/users/:id", a.getUser)
	router.DELETE("/users/:id/cache", a.evictUser)
	router.DELETE("/caches/:name", a.clearCache)
	router.GET("/getProfile", a.getProfile)

	actuator := router.Group("/actuator")
	actuator.POST("/refresh", a.refresh(false))
	actuator.POST("/bus-refresh", a.refresh(true))

	if a.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.gatherer, promhttp.HandlerOpts{})))
	}
}

func (a *ConfigClientAPI) hello(c *gin.Context) {
	start := time.Now()
	user, err := a.users.SelectByPrimaryKey(c.Request.Context(), 1)
	elapsed := time.Since(start)
	if err != nil {
		a.writeUserError(c, err)
		return
	}
	c.String(http.StatusOK, "Hello SpringBoot%s, query time: %dms", user.Name, elapsed.Milliseconds())
}

func (a *ConfigClientAPI) getUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := a.users.SelectByPrimaryKey(c.Request.Context(), id)
	if err != nil {
		a.writeUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *ConfigClientAPI) evictUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	spec := core.UserCacheKey(id)
	a.admin.Evict(c.Request.Context(), spec.Cache, spec.Key())
	c.Status(http.StatusNoContent)
}

func (a *ConfigClientAPI) clearCache(c *gin.Context) {
	name := c.Param("name")
	if err := cache.ValidateCacheName(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cache name"})
		return
	}
	a.admin.Clear(c.Request.Context(), name)
	c.Status(http.StatusNoContent)
}

func (a *ConfigClientAPI) getProfile(c *gin.Context) {
	c.String(http.StatusOK, a.admin.Config().Server.Port)
}

func (a *ConfigClientAPI) refresh(broadcast bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := a.admin.Refresh(c.Request.Context(), broadcast)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh configuration"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"port":        cfg.Server.Port,
			"default_ttl": cfg.Cache.DefaultTTL.String(),
		})
	}
}

func (a *ConfigClientAPI) writeUserError(c *gin.Context, err error) {
	if errors.Is(err, core.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	a.logger.Error("User lookup failed", zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return 0, false
	}
	return id, true
}
