package ports

import (
	"context"

	"chatbot-bootstrap/internal/types"
)

// RuntimePort prepares the base runtime: working directory and interpreter.
type RuntimePort interface {
	EnsureWorkdir(path string) error
	LookupInterpreter(name string) (string, error)
}

// SystemPackagePort drives the OS package manager.
type SystemPackagePort interface {
	Update(ctx context.Context) error
	Install(ctx context.Context, args []string) error
	Installed(ctx context.Context, names []string) ([]types.InstalledPackage, error)
	// Clean removes package index data so it does not persist in the layer.
	Clean(ctx context.Context) error
}

// PythonPackagePort drives the language package manager.
type PythonPackagePort interface {
	UpgradeInstaller(ctx context.Context) error
	InstallManifest(ctx context.Context, manifestPath string) error
	Installed(ctx context.Context) ([]types.InstalledPackage, error)
}
