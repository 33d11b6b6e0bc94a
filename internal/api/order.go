package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OrderAPI is the order service's only route group.
type OrderAPI struct{}

func NewOrderAPI() *OrderAPI { return &OrderAPI{} }

func (OrderAPI) RegisterRoutes(router *gin.Engine) {
	router.GET("/hello", func(c *gin.Context) {
		c.String(http.StatusOK, "hello order service!")
	})
}
