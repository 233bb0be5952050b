package handlers

import (
	"net/http"
	"time"

	"brn-watcher/agent/internal/services"
	"brn-watcher/shared/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var startedAt = time.Now()

func RegisterRoutes(router *gin.Engine, appLogger *logger.Logger) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "API is running. Watcher active!"})
	})
}

// RegisterAPIRoutes exposes the operational surface: a health check that
// pings the database and reports the auto-checker phase.
func RegisterAPIRoutes(router *gin.Engine, appLogger *logger.Logger, db *gorm.DB, checker *services.AutoChecker) {
	apiGroup := router.Group("/api/v1")
	{
		apiGroup.GET("/health", func(c *gin.Context) {
			dbStatus := "ok"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				appLogger.Error("Health check database ping failed", "error", err)
				dbStatus = "unavailable"
			}

			status := http.StatusOK
			if dbStatus != "ok" {
				status = http.StatusServiceUnavailable
			}

			resp := gin.H{
				"status":        dbStatus,
				"uptimeSeconds": int64(time.Since(startedAt).Seconds()),
			}
			if checker != nil {
				resp["autoCheckState"] = checker.State()
				if last := checker.LastCycle(); !last.IsZero() {
					resp["lastCycle"] = last.UTC().Format(time.RFC3339)
				}
			}
			c.JSON(status, resp)
		})
	}
}
