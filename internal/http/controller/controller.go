package controller

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Controller handles operational HTTP requests.
type Controller struct {
	db *sql.DB
}

// New creates a new Controller with the given database handle.
func New(db *sql.DB) *Controller {
	return &Controller{
		db: db,
	}
}

// Ping handles the HTTP GET request for the liveness endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Health handles the HTTP GET request for the readiness endpoint. It reports
// unhealthy when the storage backend stops answering.
func (con *Controller) Health(c *gin.Context) {
	if err := con.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}
