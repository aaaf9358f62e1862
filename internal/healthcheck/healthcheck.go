package healthcheck

import (
	"context"
	"errors"
	"time"
)

// CheckFunc 单项依赖检查，返回 nil 表示正常
type CheckFunc func(ctx context.Context) error

// Pinger 可 Ping 的依赖（Redis、PostgreSQL）
type Pinger interface {
	Ping(ctx context.Context) error
}

type namedCheck struct {
	name  string
	check CheckFunc
}

// HealthChecker 健康检查器
type HealthChecker struct {
	timeout time.Duration
	checks  []namedCheck
}

// NewHealthChecker 创建健康检查器，每项检查的超时为 timeout（<=0 时为 2s）
func NewHealthChecker(timeout time.Duration) *HealthChecker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &HealthChecker{timeout: timeout}
}

// Register 注册一项就绪检查，按注册顺序执行
func (h *HealthChecker) Register(name string, check CheckFunc) *HealthChecker {
	h.checks = append(h.checks, namedCheck{name: name, check: check})
	return h
}

// RegisterPinger 注册一个 Ping 类依赖
func (h *HealthChecker) RegisterPinger(name string, p Pinger) *HealthChecker {
	return h.Register(name, p.Ping)
}

// CheckResult 健康检查结果
type CheckResult struct {
	Status  string            `json:"status"` // "ok" or "error"
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version,omitempty"`
}

// OK 是否所有检查都通过
func (r CheckResult) OK() bool { return r.Status == "ok" }

// LivenessCheck 存活检查（快速返回，不检查依赖）
func (h *HealthChecker) LivenessCheck() CheckResult {
	return CheckResult{
		Status: "ok",
		Checks: map[string]string{
			"service": "running",
		},
	}
}

// ReadinessCheck 就绪检查（检查所有依赖）
func (h *HealthChecker) ReadinessCheck(ctx context.Context) CheckResult {
	if ctx == nil {
		ctx = context.Background()
	}
	result := CheckResult{
		Status: "ok",
		Checks: make(map[string]string, len(h.checks)),
	}

	for _, c := range h.checks {
		if err := h.run(ctx, c.check); err != nil {
			result.Checks[c.name] = "error: " + err.Error()
			result.Status = "error"
		} else {
			result.Checks[c.name] = "ok"
		}
	}

	return result
}

func (h *HealthChecker) run(ctx context.Context, check CheckFunc) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.New("check timed out")
	}
}
