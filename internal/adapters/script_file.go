package adapters

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"mvdan.cc/sh/v3/syntax"

	"chatbot-bootstrap/internal/ports"
)

type ScriptFileAdapter struct{}

func NewScriptFileAdapter() ScriptFileAdapter {
	return ScriptFileAdapter{}
}

func (a ScriptFileAdapter) Read(path string) ([]byte, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("entrypoint script not found: %s", path)).
			WithCause(err)
	}
	if info.IsDir() {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("entrypoint script is a directory: %s", path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read entrypoint script: %s", path)).
			WithCause(err)
	}
	return data, info.Mode().Perm(), nil
}

// Write replaces the script content and applies mode even when the file
// already exists.
func (a ScriptFileAdapter) Write(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, data, mode); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write entrypoint script").
			WithCause(err)
	}
	if err := os.Chmod(path, mode); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to set entrypoint script mode").
			WithCause(err)
	}
	return nil
}

func (a ScriptFileAdapter) Copy(src string, dst string) error {
	data, mode, err := a.Read(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create entrypoint directory").
			WithCause(err)
	}
	return a.Write(dst, data, mode)
}

// CheckSyntax parses the script as bash when its shebang names bash and as
// POSIX sh otherwise.
func (a ScriptFileAdapter) CheckSyntax(name string, data []byte) error {
	parser := syntax.NewParser(syntax.Variant(scriptVariant(data)))
	if _, err := parser.Parse(bytes.NewReader(data), name); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(fmt.Sprintf("entrypoint script has invalid syntax: %s", name)).
			WithCause(err)
	}
	return nil
}

func scriptVariant(data []byte) syntax.LangVariant {
	line, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.HasPrefix(line, []byte("#!")) && bytes.Contains(line, []byte("bash")) {
		return syntax.LangBash
	}
	return syntax.LangPOSIX
}

var _ ports.ScriptPort = ScriptFileAdapter{}
