package env

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igloo/pkg/errors"
)

func TestNew(t *testing.T) {
	e, err := New("/work", "/home/dev", "/opt/esf")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/opt/esf", "manifest"), e.ManifestDir())
	assert.Equal(t, filepath.Join("/opt/esf", "manifest", "target"), e.ProfileDir())
	assert.Equal(t, filepath.Join("/home/dev", ".igloo"), e.UserDir())
}

func TestNewMissingValues(t *testing.T) {
	tests := []struct {
		name            string
		cwd, home, esfd string
	}{
		{"no esf", "/work", "/home/dev", ""},
		{"no cwd", "", "/home/dev", "/opt/esf"},
		{"no home", "/work", "", "/opt/esf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cwd, tt.home, tt.esfd)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrEnvInfoInvalid))
		})
	}
}

func TestMissingESFHasHint(t *testing.T) {
	_, err := New("/work", "/home/dev", "")
	require.Error(t, err)
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestDiscover(t *testing.T) {
	esf := t.TempDir()
	e, err := Discover(esf)
	require.NoError(t, err)
	assert.Equal(t, esf, e.ESFDir)
	assert.NotEmpty(t, e.Cwd)

	_, err = Discover("")
	assert.True(t, errors.Is(err, errors.ErrEnvInfoInvalid))
}
