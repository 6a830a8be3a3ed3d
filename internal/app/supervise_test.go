package app

import (
	"context"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

func supervisorConfig() core.SupervisorConfig {
	return core.SupervisorConfig{
		Interval:       time.Millisecond,
		Backoff:        types.BackoffConstant,
		MaxAttempts:    3,
		ConnectTimeout: time.Second,
		Mode:           types.DelegationModeExec,
		Command:        []string{"python", "manage.py", "runserver", "0.0.0.0:8000"},
	}
}

func TestResolveEndpointsMergesSources(t *testing.T) {
	svc, fakes := newTestService()
	fakes.envFiles.values = map[string]string{"SQL_HOST": "db", "SQL_PORT": "5432"}
	fakes.env["CELERY_BROKER_URL"] = "redis://localhost:6379/0"

	endpoints, err := svc.ResolveEndpoints(context.Background(), EndpointsRequest{
		WaitFor:    []string{"localhost:6379", "web:8000"},
		WaitForEnv: []string{"SQL_HOST:SQL_PORT", "CELERY_BROKER_URL"},
		EnvFile:    DefaultEnvFile,
	})
	require.NoError(t, err)

	got := make([]string, 0, len(endpoints))
	for _, endpoint := range endpoints {
		got = append(got, endpoint.Address())
	}
	assert.Equal(t, []string{"localhost:6379", "web:8000", "db:5432"}, got)
}

func TestResolveEndpointsEnvFile(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ResolveEndpoints(context.Background(), EndpointsRequest{EnvFile: DefaultEnvFile})
	require.NoError(t, err)

	_, err = svc.ResolveEndpoints(context.Background(), EndpointsRequest{EnvFile: "custom.env", EnvFileRequired: true})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestResolveEndpointsMissingVariable(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ResolveEndpoints(context.Background(), EndpointsRequest{WaitForEnv: []string{"SQL_HOST:SQL_PORT"}})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestWaitSucceedsWhenReachable(t *testing.T) {
	svc, fakes := newTestService()
	err := svc.Wait(context.Background(), WaitRequest{
		Endpoints: EndpointsRequest{WaitFor: []string{"db:5432"}},
		Config:    supervisorConfig(),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"db:5432"}, fakes.prober.probed)
	assert.Nil(t, fakes.launcher.argv)
}

func TestRunNeverLaunchesWhenUnreachable(t *testing.T) {
	svc, fakes := newTestService()
	fakes.prober.down["db:5432"] = true

	err := svc.Run(context.Background(), RunRequest{
		Endpoints: EndpointsRequest{WaitFor: []string{"db:5432"}},
		Config:    supervisorConfig(),
	})
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	assert.Contains(t, err.Error(), core.UnreachablePrefix)
	assert.Len(t, fakes.prober.probed, 3)
	assert.Nil(t, fakes.launcher.argv)
}

func TestRunExecsWithProcessEnvironment(t *testing.T) {
	svc, fakes := newTestService()
	err := svc.Run(context.Background(), RunRequest{
		Endpoints: EndpointsRequest{WaitFor: []string{"db:5432"}},
		Config:    supervisorConfig(),
	})
	require.Error(t, err)
	assert.Equal(t, []string{"python", "manage.py", "runserver", "0.0.0.0:8000"}, fakes.launcher.argv)
	assert.Equal(t, []string{"PATH=/usr/bin"}, fakes.launcher.env)
}
