package handlers

import (
	"net/http"

	"caption-relay/version"

	"github.com/gin-gonic/gin"
)

// HealthCheck handles health check requests
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": version.ServiceName,
	})
}

// Version reports build information
func Version(c *gin.Context) {
	c.JSON(http.StatusOK, version.Get())
}
