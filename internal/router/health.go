package router

import (
	"context"
	"net/http"
	"time"

	"github.com/jaisdevansh/monu-bhiya/internal/cache"
	"github.com/jaisdevansh/monu-bhiya/internal/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler 存活与依赖检查，数据库不可用时返回 503
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "disabled"}
		if err := pingDB(ctx, db); err != nil {
			logger.Warnw("healthz_database_failed", "error", err)
			checks["database"] = "down"
			status = http.StatusServiceUnavailable
		}
		if cache.Enabled() {
			checks["redis"] = "ok"
			if err := cache.Ping(ctx); err != nil {
				logger.Warnw("healthz_redis_failed", "error", err)
				checks["redis"] = "down"
			}
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
