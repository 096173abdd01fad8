package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mkravets/products-service/internal/http/controller"
	"github.com/mkravets/products-service/internal/http/middleware"
)

// InitRouter wires the operational endpoints. The product operations
// themselves are served over the message RPC channel, not HTTP.
func InitRouter(server *gin.Engine, ctr *controller.Controller) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery())

	server.GET("/ping", ctr.Ping)
	server.GET("/healthz", ctr.Health)

	return server
}
