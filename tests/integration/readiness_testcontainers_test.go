//go:build integration

package integration

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"chatbot-bootstrap/internal/app"
	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
	"chatbot-bootstrap/tests/testutil"
)

func TestWaitForRedisWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startRedis(ctx, t)
	t.Cleanup(cleanup)

	t.Setenv("CELERY_BROKER_URL", "redis://"+endpoint+"/0")
	service := app.NewService(app.ServiceOptions{})
	err := service.Wait(ctx, app.WaitRequest{
		Endpoints: app.EndpointsRequest{WaitForEnv: []string{"CELERY_BROKER_URL"}},
		Config:    readinessConfig(5, 30*time.Second),
	})
	require.NoError(t, err)
}

func TestRunSupervisesApplicationAfterRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers test in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startRedis(ctx, t)
	t.Cleanup(cleanup)

	config := readinessConfig(5, 30*time.Second)
	config.Mode = types.DelegationModeSupervise
	config.Command = []string{"sh", "-c", "exit 7"}

	service := app.NewService(app.ServiceOptions{})
	err := service.Run(ctx, app.RunRequest{
		Endpoints: app.EndpointsRequest{WaitFor: []string{endpoint}},
		Config:    config,
	})
	var exitErr *types.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 7, exitErr.Code)
}

func TestWaitReportsUnreachableEndpoint(t *testing.T) {
	ctx := t.Context()
	addr := testutil.ClosedPort(t)

	config := readinessConfig(3, 0)
	config.Interval = 20 * time.Millisecond
	service := app.NewService(app.ServiceOptions{})
	err := service.Wait(ctx, app.WaitRequest{
		Endpoints: app.EndpointsRequest{WaitFor: []string{addr}},
		Config:    config,
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.True(t, strings.Contains(err.Error(), core.UnreachablePrefix), err.Error())
}

func readinessConfig(maxAttempts int, timeout time.Duration) core.SupervisorConfig {
	return core.SupervisorConfig{
		Interval:       200 * time.Millisecond,
		Backoff:        types.BackoffConstant,
		MaxAttempts:    maxAttempts,
		Timeout:        timeout,
		ConnectTimeout: time.Second,
	}
}

func startRedis(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	cleanup := func() {
		_ = container.Terminate(context.Background())
	}
	return fmt.Sprintf("%s:%s", host, port.Port()), cleanup
}
