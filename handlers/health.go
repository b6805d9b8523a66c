package handlers

import (
	"net/http"

	"casaora/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

// Health reports the last snapshot taken by the background monitor.
func (HealthHandler) Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	healthy := status.Postgres
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	code := http.StatusOK
	label := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		label = "degraded"
	}
	c.JSON(code, gin.H{"status": label, "checks": status})
}
