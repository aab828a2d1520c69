package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrapf(ErrInvalidTarget, "target %q", "avr128")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "avr128")
	assert.True(t, Is(err, ErrInvalidTarget))
	assert.False(t, Is(err, ErrUnknown))
}

func TestWithHint(t *testing.T) {
	err := WithHint(Wrap(ErrEnvInfoInvalid, "ESF_DIR"), "export ESF_DIR")

	assert.True(t, Is(err, ErrEnvInfoInvalid))
	assert.Equal(t, []string{"export ESF_DIR"}, GetAllHints(err))
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"project name", Wrap(ErrInvalidProjectName, "empty"), true},
		{"target", ErrInvalidTarget, true},
		{"existing project", ErrConfigFound, true},
		{"catalog", Wrap(ErrUnknown, "make table"), false},
		{"plain", New("disk full"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserError(tt.err))
		})
	}
}
