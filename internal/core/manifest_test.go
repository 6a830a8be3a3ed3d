package core

import (
	"context"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatbot-bootstrap/internal/types"
)

const sampleRequirements = `# web
Django>=4.2,<5.0
celery[redis]==5.3.6  # broker
python_dotenv
psycopg2-binary~=2.9 ; python_version >= "3.8"
--index-url https://pypi.org/simple
gunicorn \
    >=21.2
mylib @ https://example.com/mylib-1.0.tar.gz
`

func TestParseManifest(t *testing.T) {
	manifest, err := ParseManifest(context.Background(), "requirements.txt", []byte(sampleRequirements))
	require.NoError(t, err)

	want := []types.Dependency{
		{Name: "django", Type: types.DependencyTypePip, Line: 2, Constraints: []types.Constraint{
			{Name: "django", Op: types.ConstraintOpGte, Version: "4.2", Source: "requirements.txt:2"},
			{Name: "django", Op: types.ConstraintOpLt, Version: "5.0", Source: "requirements.txt:2"},
		}},
		{Name: "celery", Type: types.DependencyTypePip, Line: 3, Constraints: []types.Constraint{
			{Name: "celery", Op: types.ConstraintOpEq2, Version: "5.3.6", Source: "requirements.txt:3"},
		}},
		{Name: "python-dotenv", Type: types.DependencyTypePip, Line: 4},
		{Name: "psycopg2-binary", Type: types.DependencyTypePip, Marker: `python_version >= "3.8"`, Line: 5, Constraints: []types.Constraint{
			{Name: "psycopg2-binary", Op: types.ConstraintOpCompat, Version: "2.9", Source: "requirements.txt:5"},
		}},
		{Name: "gunicorn", Type: types.DependencyTypePip, Line: 7, Constraints: []types.Constraint{
			{Name: "gunicorn", Op: types.ConstraintOpGte, Version: "21.2", Source: "requirements.txt:7"},
		}},
		{Name: "mylib", Type: types.DependencyTypePip, Line: 9},
	}
	if diff := cmp.Diff(want, manifest.Dependencies); diff != "" {
		t.Fatalf("dependencies mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "requirements.txt", manifest.Path)
}

func TestParseManifestCRLF(t *testing.T) {
	manifest, err := ParseManifest(context.Background(), "r.txt", []byte("redis>=5.0\r\ncelery\r\n"))
	require.NoError(t, err)
	require.Len(t, manifest.Dependencies, 2)
	assert.Equal(t, "5.0", manifest.Dependencies[0].Constraints[0].Version)
}

func TestParseManifestEmpty(t *testing.T) {
	manifest, err := ParseManifest(context.Background(), "r.txt", []byte("\n# only comments\n\n"))
	require.NoError(t, err)
	assert.Empty(t, manifest.Dependencies)
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{name: "bad name", content: "-foo\n!!bad\n", wantMsg: "invalid requirement"},
		{name: "bad specifier", content: "django>=not a version\n", wantMsg: "invalid version specifier"},
		{name: "bad direct ref", content: "@@ @ https://x\n", wantMsg: "invalid requirement"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest(context.Background(), "r.txt", []byte(tt.content))
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseAptEntries(t *testing.T) {
	deps, err := ParseAptEntries([]string{"netcat-openbsd", "curl=7.88.1-10", "", "ca-certificates>=20230311"}, "flags")
	require.NoError(t, err)

	want := []types.Dependency{
		{Name: "netcat-openbsd", Type: types.DependencyTypeApt},
		{Name: "curl", Type: types.DependencyTypeApt, Constraints: []types.Constraint{
			{Name: "curl", Op: types.ConstraintOpEq, Version: "7.88.1-10", Source: "flags"},
		}},
		{Name: "ca-certificates", Type: types.DependencyTypeApt, Constraints: []types.Constraint{
			{Name: "ca-certificates", Op: types.ConstraintOpGte, Version: "20230311", Source: "flags"},
		}},
	}
	if diff := cmp.Diff(want, deps); diff != "" {
		t.Fatalf("deps mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"netcat-openbsd", "curl=7.88.1-10", "ca-certificates"}, AptInstallArgs(deps))
}

func TestParseAptEntriesErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{name: "uppercase name", entry: "Netcat"},
		{name: "compat operator", entry: "curl~=7.0"},
		{name: "arbitrary operator", entry: "curl===7.88.1-10"},
		{name: "bad version", entry: "curl=not-a-version!!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAptEntries([]string{tt.entry}, "flags")
			require.Error(t, err)
			assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
		})
	}
}
