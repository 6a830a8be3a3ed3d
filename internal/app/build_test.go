package app

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-bootstrap/internal/types"
)

func buildFixture(fakes *serviceFakes) BuildRequest {
	fakes.files["requirements.txt"] = []byte("django>=4.2\n")
	fakes.python.installed = map[string]string{"django": "4.2.7"}
	fakes.scripts.files["/app/entrypoint.sh"] = []byte("#!/bin/sh\r\nexec \"$@\"\r\n")
	fakes.scripts.modes["/app/entrypoint.sh"] = 0o644
	return BuildRequest{
		Runtime:        RuntimeRequest{Workdir: "/app"},
		SystemPackages: SystemPackagesRequest{Packages: DefaultSystemPackages},
		Deps:           DepsRequest{ManifestPath: "requirements.txt"},
		Entrypoint:     NormalizeRequest{Path: "/app/entrypoint.sh"},
		Materialize:    MaterializeRequest{Source: ".", Destination: "/app"},
		ReportPath:     "/app/bootstrap.report.yaml",
	}
}

func TestBuildRecordsOneLayerPerStep(t *testing.T) {
	svc, fakes := newTestService()
	result, err := svc.Build(context.Background(), buildFixture(fakes))
	require.NoError(t, err)

	steps := make([]types.BuildStep, 0, len(result.Report.Layers))
	for i, layer := range result.Report.Layers {
		steps = append(steps, layer.Step)
		assert.Equal(t, i+1, layer.Index)
		if i > 0 {
			assert.Equal(t, result.Report.Layers[i-1].Digest, layer.Parent)
		}
	}
	if diff := cmp.Diff(types.BuildSteps(), steps); diff != "" {
		t.Fatalf("steps mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, result.Report, fakes.reports.written["/app/bootstrap.report.yaml"])
	assert.Contains(t, fakes.tree.preserve, "/app/entrypoint.sh")
}

func TestBuildIsDeterministic(t *testing.T) {
	svcA, fakesA := newTestService()
	first, err := svcA.Build(context.Background(), buildFixture(fakesA))
	require.NoError(t, err)

	svcB, fakesB := newTestService()
	second, err := svcB.Build(context.Background(), buildFixture(fakesB))
	require.NoError(t, err)

	if diff := cmp.Diff(first.Report, second.Report); diff != "" {
		t.Fatalf("reports differ (-first +second):\n%s", diff)
	}
}

func TestBuildAbortsAtFirstFailure(t *testing.T) {
	svc, fakes := newTestService()
	req := buildFixture(fakes)
	fakes.python.installErr = errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("pip install failed")

	result, err := svc.Build(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
	require.Len(t, result.Report.Layers, 2)
	assert.Equal(t, types.BuildStepSystem, result.Report.Last().Step)
	assert.Zero(t, fakes.scripts.writes)
	assert.Zero(t, fakes.tree.calls)
	assert.Equal(t, result.Report, fakes.reports.written["/app/bootstrap.report.yaml"])

	inspected, err := svc.Inspect(context.Background(), InspectRequest{ReportPath: "/app/bootstrap.report.yaml"})
	require.NoError(t, err)
	assert.False(t, inspected.Complete)
}
