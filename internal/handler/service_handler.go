package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	ServiceName    = "Account REST API Service"
	ServiceVersion = "1.0"
)

// Index describes the service and where its resources live.
func Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    ServiceName,
		"version": ServiceVersion,
		"paths":   baseURL(c).JoinPath("accounts").String(),
	})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}
