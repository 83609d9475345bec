package cli

import (
	stderrors "errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ksyq12/caddyman/internal/errors"
)

func TestRunValidate(t *testing.T) {
	tests := []struct {
		name     string
		json     bool
		validate func(path string) (string, error)
		wantErr  error
	}{
		{name: "valid"},
		{name: "valid json", json: true},
		{
			name: "invalid",
			validate: func(path string) (string, error) {
				return "Error: adapting config using caddyfile: unknown directive", stderrors.New("exit status 1")
			},
			wantErr: errors.ErrValidationFailed,
		},
		{
			name: "invalid json",
			json: true,
			validate: func(path string) (string, error) {
				return "Error: unknown directive", stderrors.New("exit status 1")
			},
			wantErr: errors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTestHelper(t, oneSite)
			jsonOutput = tt.json
			h.Service.ValidateFunc = tt.validate

			err := runValidate(nil, nil)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{h.Caddyfile}, h.Service.ValidateCalls)
			assert.Equal(t, oneSite, h.Read())
		})
	}
}

func TestRunValidateMissingCaddyfile(t *testing.T) {
	h := NewTestHelper(t, oneSite)
	require.NoError(t, os.Remove(h.Caddyfile))

	err := runValidate(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrPrecondition))
	assert.Empty(t, h.Service.ValidateCalls)
}

func TestRunReload(t *testing.T) {
	h := NewTestHelper(t, oneSite)

	require.NoError(t, runReload(nil, nil))
	assert.Equal(t, 1, h.Service.ReloadCalls)

	h.Service.ReloadFunc = func() error { return stderrors.New("connection refused") }
	err := runReload(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrReloadFailed))
}
