package healthcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azhengyongqin/vision-taskhub/internal/cache"
)

func TestHealthChecker_LivenessCheck(t *testing.T) {
	// Liveness check 不依赖外部服务，应该总是成功
	hc := NewHealthChecker(0)

	result := hc.LivenessCheck()

	assert.Equal(t, "ok", result.Status)
	assert.Contains(t, result.Checks, "service")
	assert.Equal(t, "running", result.Checks["service"])
}

func TestHealthChecker_ReadinessCheck(t *testing.T) {
	hc := NewHealthChecker(time.Second).
		Register("queue", func(context.Context) error { return nil }).
		Register("worker", func(context.Context) error { return errors.New("worker stopped") })

	result := hc.ReadinessCheck(context.Background())

	assert.Equal(t, "error", result.Status)
	assert.False(t, result.OK())
	assert.Equal(t, "ok", result.Checks["queue"])
	assert.Equal(t, "error: worker stopped", result.Checks["worker"])
}

func TestHealthChecker_ReadinessCheck_NoChecks(t *testing.T) {
	result := NewHealthChecker(0).ReadinessCheck(nil)
	assert.True(t, result.OK())
	assert.NotNil(t, result.Checks)
}

func TestHealthChecker_Timeout(t *testing.T) {
	hc := NewHealthChecker(20*time.Millisecond).Register("slow", func(ctx context.Context) error {
		time.Sleep(time.Second)
		return nil
	})

	start := time.Now()
	result := hc.ReadinessCheck(context.Background())
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, "error: check timed out", result.Checks["slow"])
}

func TestHealthChecker_RedisPinger(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rc, err := cache.NewRedisCache(context.Background(), cache.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rc.Close()

	hc := NewHealthChecker(time.Second).RegisterPinger("redis", rc)
	assert.True(t, hc.ReadinessCheck(context.Background()).OK())

	mr.Close()
	result := hc.ReadinessCheck(context.Background())
	assert.False(t, result.OK())
	assert.Contains(t, result.Checks["redis"], "error:")
}
