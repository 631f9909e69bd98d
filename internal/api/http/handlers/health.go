package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/ace/pkg/interfaces/infrastructure/writegate"
)

// HealthHandler 健康检查
//
// 只读模式下仍返回 200：查询接口可用，写接口由引擎拒绝。
type HealthHandler struct {
	startTime time.Time
	gate      writegate.WriteGate
}

// NewHealthHandler 创建健康检查处理器；gate 可为空
func NewHealthHandler(gate writegate.WriteGate) *HealthHandler {
	return &HealthHandler{startTime: time.Now(), gate: gate}
}

// RegisterRoutes 注册 /health
func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.GetHealth)
}

// GetHealth GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"uptime": time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.gate != nil && h.gate.IsReadOnly() {
		body["status"] = "read_only"
		body["reason"] = h.gate.ReadOnlyReason()
		body["since"] = h.gate.ReadOnlySince().UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}
