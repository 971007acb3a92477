package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	dbStatus := "healthy"
	sqlDB, err := h.DB.DB()
	if err != nil {
		dbStatus = "unhealthy: " + err.Error()
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	redisStatus := "healthy"
	if err := h.Redis.Ping(ctx); err != nil {
		redisStatus = "unhealthy: " + err.Error()
	}

	status := "healthy"
	code := http.StatusOK
	if dbStatus != "healthy" || redisStatus != "healthy" {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":   status,
		"database": dbStatus,
		"redis":    redisStatus,
	})
}
