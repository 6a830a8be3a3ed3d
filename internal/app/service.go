package app

import (
	"os"
	"time"

	"chatbot-bootstrap/internal/adapters"
	"chatbot-bootstrap/internal/ports"
)

type Service struct {
	Runtime    ports.RuntimePort
	SystemPkgs ports.SystemPackagePort
	PythonPkgs ports.PythonPackagePort
	Scripts    ports.ScriptPort
	SourceTree ports.SourceTreePort
	Reports    ports.ReportPort
	EnvFiles   ports.EnvFilePort
	Prober     ports.ProberPort
	Launcher   ports.ProcessLauncherPort
	ReadFile   func(path string) ([]byte, error)
	LookupEnv  func(key string) (string, bool)
	Environ    func() []string
	Clock      func() time.Time
}

// ServiceOptions carries the adapter settings that come from configuration.
type ServiceOptions struct {
	Python      string
	PipIndexURL string
	AptListsDir string
}

func NewService(opts ServiceOptions) Service {
	aptRunner := adapters.NewCommandRunnerAdapter("DEBIAN_FRONTEND=noninteractive")
	pipRunner := adapters.NewCommandRunnerAdapter("PIP_DISABLE_PIP_VERSION_CHECK=1", "PIP_NO_INPUT=1")
	return Service{
		Runtime:    adapters.NewRuntimeAdapter(),
		SystemPkgs: adapters.NewAptInstallerAdapter(aptRunner, opts.AptListsDir),
		PythonPkgs: adapters.NewPipInstallerAdapter(pipRunner, opts.Python, opts.PipIndexURL),
		Scripts:    adapters.NewScriptFileAdapter(),
		SourceTree: adapters.NewSourceTreeAdapter(),
		Reports:    adapters.NewReportFileAdapter(),
		EnvFiles:   adapters.NewEnvFileAdapter(),
		Prober:     adapters.NewTCPProberAdapter(),
		Launcher:   adapters.NewProcessLauncherAdapter(),
		ReadFile:   os.ReadFile,
		LookupEnv:  os.LookupEnv,
		Environ:    os.Environ,
		Clock:      time.Now,
	}
}
