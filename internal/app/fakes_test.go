package app

import (
	"context"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"chatbot-bootstrap/internal/ports"
	"chatbot-bootstrap/internal/types"
)

type fakeRuntime struct {
	workdirs     []string
	interpreters map[string]string
}

func (f *fakeRuntime) EnsureWorkdir(path string) error {
	f.workdirs = append(f.workdirs, path)
	return nil
}

func (f *fakeRuntime) LookupInterpreter(name string) (string, error) {
	if path, ok := f.interpreters[name]; ok {
		return path, nil
	}
	return "", errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("runtime interpreter " + name + " not found on PATH")
}

type fakeSystemPkgs struct {
	calls      []string
	installed  map[string]string
	installErr error
}

func (f *fakeSystemPkgs) Update(context.Context) error {
	f.calls = append(f.calls, "update")
	return nil
}

func (f *fakeSystemPkgs) Install(_ context.Context, args []string) error {
	f.calls = append(f.calls, "install")
	return f.installErr
}

func (f *fakeSystemPkgs) Installed(_ context.Context, names []string) ([]types.InstalledPackage, error) {
	f.calls = append(f.calls, "installed")
	var out []types.InstalledPackage
	for _, name := range names {
		if version, ok := f.installed[name]; ok {
			out = append(out, types.InstalledPackage{Name: name, Version: version})
		}
	}
	return out, nil
}

func (f *fakeSystemPkgs) Clean(context.Context) error {
	f.calls = append(f.calls, "clean")
	return nil
}

type fakePythonPkgs struct {
	calls      []string
	installed  map[string]string
	installErr error
}

func (f *fakePythonPkgs) UpgradeInstaller(context.Context) error {
	f.calls = append(f.calls, "upgrade")
	return nil
}

func (f *fakePythonPkgs) InstallManifest(_ context.Context, path string) error {
	f.calls = append(f.calls, "install "+path)
	return f.installErr
}

func (f *fakePythonPkgs) Installed(context.Context) ([]types.InstalledPackage, error) {
	f.calls = append(f.calls, "list")
	var out []types.InstalledPackage
	for name, version := range f.installed {
		out = append(out, types.InstalledPackage{Name: name, Version: version})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type fakeScripts struct {
	files  map[string][]byte
	modes  map[string]os.FileMode
	writes int
}

func newFakeScripts() *fakeScripts {
	return &fakeScripts{files: map[string][]byte{}, modes: map[string]os.FileMode{}}
}

func (f *fakeScripts) Read(path string) ([]byte, os.FileMode, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, 0, errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("entrypoint script not found: " + path)
	}
	return data, f.modes[path], nil
}

func (f *fakeScripts) Write(path string, data []byte, mode os.FileMode) error {
	f.writes++
	f.files[path] = append([]byte(nil), data...)
	f.modes[path] = mode
	return nil
}

func (f *fakeScripts) Copy(src string, dst string) error {
	data, mode, err := f.Read(src)
	if err != nil {
		return err
	}
	f.files[dst] = data
	f.modes[dst] = mode
	return nil
}

func (f *fakeScripts) CheckSyntax(string, []byte) error { return nil }

type fakeSourceTree struct {
	calls    int
	preserve []string
	err      error
}

func (f *fakeSourceTree) Copy(_ context.Context, src string, dst string, preserve []string) (types.TreeSummary, error) {
	f.calls++
	f.preserve = preserve
	if f.err != nil {
		return types.TreeSummary{}, f.err
	}
	return types.TreeSummary{Files: 3, Skipped: 1, Digest: "sha256:tree"}, nil
}

type fakeReports struct {
	written map[string]types.BuildReport
}

func (f *fakeReports) WriteReport(path string, report types.BuildReport) error {
	if f.written == nil {
		f.written = map[string]types.BuildReport{}
	}
	f.written[path] = report
	return nil
}

func (f *fakeReports) ReadReport(path string) (types.BuildReport, error) {
	report, ok := f.written[path]
	if !ok {
		return types.BuildReport{}, errors.New("missing")
	}
	return report, nil
}

type fakeEnvFiles struct {
	values map[string]string
	env    map[string]string
}

func (f *fakeEnvFiles) Load(path string) error {
	if f.values == nil {
		return errbuilder.New().WithCode(errbuilder.CodeNotFound).WithMsg("env file not found: " + path)
	}
	for key, value := range f.values {
		if _, ok := f.env[key]; !ok {
			f.env[key] = value
		}
	}
	return nil
}

type fakeProber struct {
	probed []string
	down   map[string]bool
}

func (f *fakeProber) Probe(_ context.Context, endpoint types.Endpoint) error {
	f.probed = append(f.probed, endpoint.Address())
	if f.down[endpoint.Address()] {
		return errors.New("connection refused")
	}
	return nil
}

type fakeLauncher struct {
	argv    []string
	env     []string
	execErr error
}

func (f *fakeLauncher) Exec(argv []string, env []string) error {
	f.argv = argv
	f.env = env
	return f.execErr
}

func (f *fakeLauncher) Start([]string, []string) (ports.ProcessHandle, error) {
	return nil, errors.New("not supported")
}

type serviceFakes struct {
	runtime  *fakeRuntime
	system   *fakeSystemPkgs
	python   *fakePythonPkgs
	scripts  *fakeScripts
	tree     *fakeSourceTree
	reports  *fakeReports
	envFiles *fakeEnvFiles
	prober   *fakeProber
	launcher *fakeLauncher
	files    map[string][]byte
	env      map[string]string
}

func newTestService() (Service, *serviceFakes) {
	env := map[string]string{}
	fakes := &serviceFakes{
		runtime:  &fakeRuntime{interpreters: map[string]string{"python": "/usr/local/bin/python"}},
		system:   &fakeSystemPkgs{installed: map[string]string{"netcat-openbsd": "1.219-1"}},
		python:   &fakePythonPkgs{installed: map[string]string{}},
		scripts:  newFakeScripts(),
		tree:     &fakeSourceTree{},
		reports:  &fakeReports{},
		envFiles: &fakeEnvFiles{env: env},
		prober:   &fakeProber{down: map[string]bool{}},
		launcher: &fakeLauncher{execErr: errors.New("exec disabled")},
		files:    map[string][]byte{},
		env:      env,
	}
	svc := Service{
		Runtime:    fakes.runtime,
		SystemPkgs: fakes.system,
		PythonPkgs: fakes.python,
		Scripts:    fakes.scripts,
		SourceTree: fakes.tree,
		Reports:    fakes.reports,
		EnvFiles:   fakes.envFiles,
		Prober:     fakes.prober,
		Launcher:   fakes.launcher,
		ReadFile: func(path string) ([]byte, error) {
			data, ok := fakes.files[path]
			if !ok {
				return nil, os.ErrNotExist
			}
			return data, nil
		},
		LookupEnv: func(key string) (string, bool) {
			value, ok := env[key]
			return value, ok
		},
		Environ: func() []string { return []string{"PATH=/usr/bin"} },
		Clock:   func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
	return svc, fakes
}
