package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScriptFileReadWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "entrypoint.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\r\n"), 0o644))

	adapter := NewScriptFileAdapter()
	data, mode, err := adapter.Read(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\r\n", string(data))
	assert.Equal(t, os.FileMode(0o644), mode)

	require.NoError(t, adapter.Write(path, []byte("#!/bin/sh\n"), 0o755))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestScriptFileReadMissing(t *testing.T) {
	_, _, err := NewScriptFileAdapter().Read(filepath.Join(t.TempDir(), "missing.sh"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))

	_, _, err = NewScriptFileAdapter().Read(t.TempDir())
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

func TestScriptFileCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "entrypoint.sh")
	dst := filepath.Join(dir, "usr", "local", "bin", "entrypoint.sh")
	require.NoError(t, os.WriteFile(src, []byte("#!/bin/sh\nexec \"$@\"\n"), 0o750))

	require.NoError(t, NewScriptFileAdapter().Copy(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\nexec \"$@\"\n", string(data))
}

func TestScriptFileCheckSyntax(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		wantErr bool
	}{
		{name: "posix", script: "#!/bin/sh\nset -e\nexec \"$@\"\n"},
		{name: "bash arrays", script: "#!/usr/bin/env bash\nargs=(a b)\nexec \"${args[@]}\"\n"},
		{name: "bash arrays under sh", script: "#!/bin/sh\nargs=(a b)\n", wantErr: true},
		{name: "unterminated if", script: "#!/bin/sh\nif true; then\n", wantErr: true},
		{name: "no shebang", script: "exec python manage.py runserver 0.0.0.0:8000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewScriptFileAdapter().CheckSyntax(tt.name, []byte(tt.script))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
		})
	}
}
