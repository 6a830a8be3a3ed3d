package shared

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePipName(t *testing.T) {
	tests := map[string]string{
		"Django":             "django",
		"python_dotenv":      "python-dotenv",
		"zope.interface":     "zope-interface",
		"  Celery  ":         "celery",
		"django-celery-beat": "django-celery-beat",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePipName(in), in)
	}
}

func TestCommandErrorKeepsCause(t *testing.T) {
	cause := errors.New("exit status 100")
	err := CommandError([]byte("E: Unable to locate package nope\n"), cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "E: Unable to locate package nope: exit status 100", err.Error())
}
