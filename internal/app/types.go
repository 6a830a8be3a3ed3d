package app

import (
	"os"

	"chatbot-bootstrap/internal/core"
	"chatbot-bootstrap/internal/types"
)

type RuntimeRequest struct {
	Workdir     string
	Interpreter string
}

type RuntimeResult struct {
	Workdir     string
	Interpreter string
}

type SystemPackagesRequest struct {
	Packages []string
}

type SystemPackagesResult struct {
	Installed []types.InstalledPackage
}

type ProvisionRequest struct {
	Runtime        RuntimeRequest
	SystemPackages SystemPackagesRequest
}

type ProvisionResult struct {
	Runtime        RuntimeResult
	SystemPackages SystemPackagesResult
}

type DepsRequest struct {
	ManifestPath string
}

type DepsResult struct {
	Declared  int
	Installed []types.InstalledPackage
}

type NormalizeRequest struct {
	Path     string
	CopyFrom string
}

type NormalizeResult struct {
	Path    string
	Changed bool
	CRLF    int
	Mode    os.FileMode
	Content []byte
}

type MaterializeRequest struct {
	Source      string
	Destination string
	Preserve    []string
}

type MaterializeResult struct {
	Summary types.TreeSummary
}

type BuildRequest struct {
	Runtime        RuntimeRequest
	SystemPackages SystemPackagesRequest
	Deps           DepsRequest
	Entrypoint     NormalizeRequest
	Materialize    MaterializeRequest
	ReportPath     string
}

type BuildResult struct {
	Report types.BuildReport
}

type EndpointsRequest struct {
	WaitFor    []string
	WaitForEnv []string
	EnvFile    string

	// EnvFileRequired fails when EnvFile is missing instead of warning.
	EnvFileRequired bool
}

type WaitRequest struct {
	Endpoints EndpointsRequest
	Config    core.SupervisorConfig
	Signals   <-chan os.Signal
}

type RunRequest struct {
	Endpoints EndpointsRequest
	Config    core.SupervisorConfig
	Signals   <-chan os.Signal
}

type InspectRequest struct {
	ReportPath string
}

type InspectResult struct {
	Report   types.BuildReport
	Complete bool
}
