package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/informaticsmatters/jenkins-utils/pkg/errors"
)

func TestToolErrorMessage(t *testing.T) {
	cause := stderrors.New("boom")

	err := errors.JobsError("failed to save job", cause)
	assert.Equal(t, "[JOBS] failed to save job: boom", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := errors.ValidationError("id is required", nil)
	assert.Equal(t, "[VALIDATION] id is required", bare.Error())
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", errors.CredentialsError("post failed", nil))

	assert.True(t, errors.IsType(err, errors.ErrCredentials))
	assert.False(t, errors.IsType(err, errors.ErrJobs))
	assert.False(t, errors.IsType(nil, errors.ErrJobs))
	assert.False(t, errors.IsType(stderrors.New("plain"), errors.ErrJobs))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", stderrors.New("x"), 1},
		{"config", errors.ConfigError("x", nil), 2},
		{"validation", errors.ValidationError("x", nil), 2},
		{"connection", errors.ConnectionError("x", nil), 1},
		{"wrapped config", fmt.Errorf("ctx: %w", errors.ConfigError("x", nil)), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.ExitCode(tt.err))
		})
	}
}

func TestWithContext(t *testing.T) {
	err := errors.JobsError("restore failed", nil).WithContext("job", "build-api")
	assert.Equal(t, "build-api", err.Context["job"])
	assert.Equal(t, "[JOBS] restore failed (job=build-api)", err.Error())

	withCause := errors.CredentialsError("failed to set secret text", stderrors.New("409")).
		WithContext("id", "npm-token").
		WithContext("attempt", 1)
	assert.Equal(t, "[CREDENTIALS] failed to set secret text (attempt=1, id=npm-token): 409", withCause.Error())
}
