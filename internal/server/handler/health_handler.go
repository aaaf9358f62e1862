package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/azhengyongqin/vision-taskhub/internal/healthcheck"
)

// HealthHandler 存活与就绪探针
type HealthHandler struct {
	checker *healthcheck.HealthChecker
}

// NewHealthHandler checker 为 nil 时两个探针都直接返回 ok
func NewHealthHandler(checker *healthcheck.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

// Liveness godoc
// @Summary Liveness 检查
// @Description 进程存活即返回 200
// @Tags Health
// @Produce json
// @Success 200 {object} healthcheck.CheckResult
// @Router /healthz [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	if h.checker == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	respondCheck(c, h.checker.LivenessCheck())
}

// Readiness godoc
// @Summary Readiness 检查
// @Description 检查队列是否开放、worker 是否存活，以及已配置的 Redis、PostgreSQL
// @Tags Health
// @Produce json
// @Success 200 {object} healthcheck.CheckResult
// @Failure 503 {object} healthcheck.CheckResult
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.checker == nil {
		c.String(http.StatusOK, "ok")
		return
	}
	respondCheck(c, h.checker.ReadinessCheck(c.Request.Context()))
}

func respondCheck(c *gin.Context, result healthcheck.CheckResult) {
	status := http.StatusOK
	if !result.OK() {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, result)
}
