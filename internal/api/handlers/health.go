package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthCheck returns the health status of the API and which song store
// backs it ("postgres" or "memory")
func HealthCheck(storage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"storage": gin.H{
				"backend": storage,
			},
		})
	}
}
