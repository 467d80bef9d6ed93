package credentials

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
	"github.com/informaticsmatters/jenkins-utils/pkg/observability"
)

// recordingStore keeps every payload it is given.
type recordingStore struct {
	payloads []map[string]any
	files    map[string]string
	err      error
}

func (s *recordingStore) record(payload []byte) error {
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		return err
	}
	s.payloads = append(s.payloads, m)
	return s.err
}

func (s *recordingStore) CreateCredentials(_ context.Context, payload []byte) error {
	return s.record(payload)
}

func (s *recordingStore) CreateFileCredentials(_ context.Context, payload []byte, fileName string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	if s.files == nil {
		s.files = map[string]string{}
	}
	s.files[fileName] = string(data)
	return s.record(payload)
}

func credentialsOf(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	creds, ok := payload["credentials"].(map[string]any)
	require.True(t, ok, "payload has no credentials object")
	return creds
}

func TestSetSecretText(t *testing.T) {
	store := &recordingStore{}
	p := NewProvisioner(store)

	require.NoError(t, p.SetSecretText(context.Background(), "npm-token", "s3cret", ""))

	require.Len(t, store.payloads, 1)
	assert.Equal(t, "0", store.payloads[0][""])
	assert.Equal(t, map[string]any{
		"scope":       "GLOBAL",
		"id":          "npm-token",
		"secret":      "s3cret",
		"description": "Secret Text",
		"$class":      ClassStringCredentials,
	}, credentialsOf(t, store.payloads[0]))
}

func TestSetSecretFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/keys/kubeconfig", []byte("apiVersion: v1"), 0o600))

	store := &recordingStore{}
	p := NewProvisioner(store, WithFs(fs))

	require.NoError(t, p.SetSecretFile(context.Background(), "kube", "/keys/kubeconfig", "Cluster access"))

	require.Len(t, store.payloads, 1)
	assert.Equal(t, "4", store.payloads[0][""])
	assert.Equal(t, map[string]any{
		"scope":       "GLOBAL",
		"id":          "kube",
		"file":        "secret",
		"description": "Cluster access",
		"$class":      ClassFileCredentials,
	}, credentialsOf(t, store.payloads[0]))
	assert.Equal(t, "apiVersion: v1", store.files["kubeconfig"])
}

func TestSetSecretFileMissing(t *testing.T) {
	store := &recordingStore{}
	p := NewProvisioner(store, WithFs(afero.NewMemMapFs()))

	err := p.SetSecretFile(context.Background(), "kube", "/nope", "")
	assert.True(t, toolerrors.IsType(err, toolerrors.ErrValidation))
	assert.Empty(t, store.payloads, "nothing is posted when the file is missing")
}

func TestSetSecretUser(t *testing.T) {
	store := &recordingStore{}
	p := NewProvisioner(store)

	require.NoError(t, p.SetSecretUser(context.Background(), "registry", "bot", "pw", ""))

	require.Len(t, store.payloads, 1)
	assert.Equal(t, "4", store.payloads[0][""])
	assert.Equal(t, map[string]any{
		"scope":       "GLOBAL",
		"id":          "registry",
		"username":    "bot",
		"password":    "pw",
		"description": "Secret User",
		"$class":      ClassUsernamePasswordCredentials,
	}, credentialsOf(t, store.payloads[0]))
}

func TestEmptyIDIsRejected(t *testing.T) {
	store := &recordingStore{}
	p := NewProvisioner(store)
	ctx := context.Background()

	for _, err := range []error{
		p.SetSecretText(ctx, "", "x", ""),
		p.SetSecretFile(ctx, "", "/x", ""),
		p.SetSecretUser(ctx, "", "u", "p", ""),
	} {
		assert.True(t, toolerrors.IsType(err, toolerrors.ErrValidation))
	}
	assert.Empty(t, store.payloads)
}

func TestStoreFailureIsCredentialsError(t *testing.T) {
	store := &recordingStore{err: errors.New("POST failed")}
	p := NewProvisioner(store)

	err := p.SetSecretText(context.Background(), "id", "x", "")
	assert.True(t, toolerrors.IsType(err, toolerrors.ErrCredentials))
	assert.ErrorIs(t, err, store.err)
}

func TestSecretsAreNotLogged(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
	}{
		{"success", nil},
		{"store failure", errors.New("POST failed: 500")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := observability.NewLoggerWithOptions(observability.Options{
				Level:  "debug",
				Format: "json",
				Output: &buf,
			})
			p := NewProvisioner(&recordingStore{err: tt.storeErr}, WithLogger(logger))

			ctx := context.Background()
			textErr := p.SetSecretText(ctx, "npm-token", "text-s3cret", "")
			userErr := p.SetSecretUser(ctx, "registry", "ci-bot", "user-p4ssword", "")
			if tt.storeErr == nil {
				require.NoError(t, textErr)
				require.NoError(t, userErr)
			} else {
				require.Error(t, textErr)
				require.Error(t, userErr)
				assert.NotContains(t, textErr.Error(), "text-s3cret")
				assert.NotContains(t, userErr.Error(), "user-p4ssword")
			}

			out := buf.String()
			assert.Contains(t, out, "npm-token")
			assert.Contains(t, out, "registry")
			assert.NotContains(t, out, "text-s3cret")
			assert.NotContains(t, out, "user-p4ssword")
		})
	}
}
