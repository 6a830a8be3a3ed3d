package ports

import (
	"context"
	"os"

	"chatbot-bootstrap/internal/types"
)

// ScriptPort reads and rewrites the entrypoint script.
type ScriptPort interface {
	Read(path string) ([]byte, os.FileMode, error)
	Write(path string, data []byte, mode os.FileMode) error
	Copy(src string, dst string) error
	CheckSyntax(name string, data []byte) error
}

// SourceTreePort copies the application source into the image root.
type SourceTreePort interface {
	Copy(ctx context.Context, src string, dst string, preserve []string) (types.TreeSummary, error)
}

// ReportPort persists the build report.
type ReportPort interface {
	WriteReport(path string, report types.BuildReport) error
	ReadReport(path string) (types.BuildReport, error)
}

// EnvFilePort loads dotenv files into the process environment.
type EnvFilePort interface {
	Load(path string) error
}
