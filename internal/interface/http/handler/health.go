package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthHandler 存活/就绪检查
type HealthHandler struct {
	db    *gorm.DB
	redis *goredis.Client
}

// NewHealthHandler redis可为nil
func NewHealthHandler(db *gorm.DB, redis *goredis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// HealthResponse 依赖状态
type HealthResponse struct {
	Status   string `json:"status" example:"ok"`
	Database string `json:"database" example:"ok"`
	Redis    string `json:"redis,omitempty" example:"ok"`
}

// Ping 存活检查
// @Summary      存活检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} response.MessageBody
// @Router       /ping [get]
func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Healthz 就绪检查
// 数据库不可用返回503；Redis只影响缓存，不可用时仍返回200
// @Summary      就绪检查
// @Tags         系统
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /healthz [get]
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok"}
	status := http.StatusOK

	if err := h.pingDB(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		resp.Redis = "ok"
		if err := h.redis.Ping(ctx).Err(); err != nil {
			resp.Redis = err.Error()
			if status == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	c.JSON(status, resp)
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
