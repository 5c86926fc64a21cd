package observability

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheckerAggregation(t *testing.T) {
	hc := NewHealthChecker()

	hc.Register("database", PingHealthCheck("database", func(ctx context.Context) error {
		return nil
	}))
	hc.Register("redis", PingHealthCheck("redis", func(ctx context.Context) error {
		return fmt.Errorf("connection refused")
	}))

	response := hc.GetHealthResponse(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, response.Status)
	assert.Equal(t, "cx-copilot", response.Service)
	require.Len(t, response.Checks, 2)
	assert.Equal(t, HealthStatusHealthy, response.Checks["database"].Status)
	assert.Equal(t, HealthStatusUnhealthy, response.Checks["redis"].Status)
}

func TestHealthCheckerAllHealthy(t *testing.T) {
	hc := NewHealthChecker()
	hc.Register("database", PingHealthCheck("database", func(ctx context.Context) error {
		return nil
	}))

	response := hc.GetHealthResponse(context.Background())
	assert.Equal(t, HealthStatusHealthy, response.Status)
}

func TestHealthCheckCaching(t *testing.T) {
	hc := NewHealthChecker()

	calls := 0
	hc.Register("database", PingHealthCheck("database", func(ctx context.Context) error {
		calls++
		return nil
	}))

	hc.Check(context.Background())
	hc.Check(context.Background())

	// Second check within the TTL is served from cache
	assert.Equal(t, 1, calls)
}

func TestMemoryHealthCheck(t *testing.T) {
	check := MemoryHealthCheck(func() (uint64, uint64) {
		return 100 << 20, 200 << 20 // 100 MiB allocated
	})
	result := check(context.Background())
	assert.Equal(t, HealthStatusHealthy, result.Status)

	degraded := MemoryHealthCheck(func() (uint64, uint64) {
		return 2 << 30, 3 << 30 // 2 GiB allocated
	})
	result = degraded(context.Background())
	assert.Equal(t, HealthStatusDegraded, result.Status)
}
