package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health pings postgres and redis. 200 when both answer, 503 otherwise.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		pg := "up"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			pg = "down"
		}

		rd := "up"
		if rdb.Ping(ctx).Err() != nil {
			rd = "down"
		}

		status := http.StatusOK
		overall := "ok"
		if pg == "down" || rd == "down" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		c.JSON(status, gin.H{
			"status":   overall,
			"postgres": pg,
			"redis":    rd,
		})
	}
}
