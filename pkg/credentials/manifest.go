package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
	"github.com/informaticsmatters/jenkins-utils/pkg/jenkins"
	"github.com/informaticsmatters/jenkins-utils/pkg/observability"
)

// Manifest lists secrets to provision in one run.
//
// Example:
//
//	skip_existing: true
//	secrets:
//	  - kind: text
//	    id: npm-token
//	    value_env: NPM_TOKEN
//	  - kind: file
//	    id: kubeconfig
//	    path: ./kubeconfig
//	  - kind: user
//	    id: registry
//	    username: ci-bot
//	    password_env: REGISTRY_PASSWORD
type Manifest struct {
	SkipExisting bool    `yaml:"skip_existing"`
	Secrets      []Entry `yaml:"secrets"`

	// dir resolves relative file paths; set by LoadManifest.
	dir string
}

// Entry is a single secret. Literal values and *_env references are
// mutually exclusive.
type Entry struct {
	Kind        Kind   `yaml:"kind"`
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`

	Value    string `yaml:"value,omitempty"`
	ValueEnv string `yaml:"value_env,omitempty"`

	Path string `yaml:"path,omitempty"`

	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
}

// Summary counts the outcome of Apply.
type Summary struct {
	Applied int
	Skipped int
	Failed  int
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, toolerrors.ConfigError(fmt.Sprintf("failed to read manifest: %s", path), err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes and validates manifest YAML. Unknown keys are
// rejected so a misspelt value_env never silently becomes a literal.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, toolerrors.ConfigError("failed to parse manifest", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks every entry and that ids are unique.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Secrets))
	for i, e := range m.Secrets {
		if err := e.validate(); err != nil {
			return toolerrors.ValidationError(fmt.Sprintf("secrets[%d]", i), err)
		}
		if seen[e.ID] {
			return toolerrors.ValidationError(fmt.Sprintf("secrets[%d]: duplicate id %q", i, e.ID), nil)
		}
		seen[e.ID] = true
	}
	return nil
}

func (e Entry) validate() error {
	if e.ID == "" {
		return errors.New("id is required")
	}

	switch e.Kind {
	case KindText:
		return exactlyOne("value", e.Value, "value_env", e.ValueEnv)
	case KindFile:
		if e.Path == "" {
			return errors.New("path is required for file secrets")
		}
	case KindUser:
		if e.Username == "" {
			return errors.New("username is required for user secrets")
		}
		return exactlyOne("password", e.Password, "password_env", e.PasswordEnv)
	default:
		return fmt.Errorf("unknown kind %q (must be text, file or user)", e.Kind)
	}
	return nil
}

func exactlyOne(name, value, envName, env string) error {
	if (value == "") == (env == "") {
		return fmt.Errorf("exactly one of %s or %s is required", name, envName)
	}
	return nil
}

// resolve returns the literal value or the content of the named
// environment variable.
func resolve(value, envName string) (string, error) {
	if envName == "" {
		return value, nil
	}
	v, ok := os.LookupEnv(envName)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", envName)
	}
	return v, nil
}

// Apply provisions every manifest entry in order. It keeps going after
// a failure and returns all failures joined.
func (p *Provisioner) Apply(ctx context.Context, m *Manifest) (Summary, error) {
	var (
		summary Summary
		errs    []error
	)

	for _, e := range m.Secrets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		err := p.applyEntry(ctx, m, e)
		switch {
		case err == nil:
			summary.Applied++
		case m.SkipExisting && errors.Is(err, jenkins.ErrCredentialExists):
			p.logger.Info("Skipping secret (already present)", observability.String("id", e.ID))
			summary.Skipped++
		default:
			summary.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", e.ID, err))
		}
	}

	return summary, errors.Join(errs...)
}

func (p *Provisioner) applyEntry(ctx context.Context, m *Manifest, e Entry) error {
	switch e.Kind {
	case KindText:
		secret, err := resolve(e.Value, e.ValueEnv)
		if err != nil {
			return toolerrors.ValidationError("cannot resolve value", err)
		}
		return p.SetSecretText(ctx, e.ID, secret, e.Description)
	case KindFile:
		path := e.Path
		if !filepath.IsAbs(path) && m.dir != "" {
			path = filepath.Join(m.dir, path)
		}
		return p.SetSecretFile(ctx, e.ID, path, e.Description)
	case KindUser:
		password, err := resolve(e.Password, e.PasswordEnv)
		if err != nil {
			return toolerrors.ValidationError("cannot resolve password", err)
		}
		return p.SetSecretUser(ctx, e.ID, e.Username, password, e.Description)
	}
	return toolerrors.ValidationError(fmt.Sprintf("unknown kind %q", e.Kind), nil)
}
