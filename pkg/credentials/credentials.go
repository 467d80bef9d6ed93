// Copyright 2026 Informatics Matters. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package credentials creates secret text, secret file and
// username/password credentials in the Jenkins global credential store.
package credentials

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
	"github.com/informaticsmatters/jenkins-utils/pkg/observability"
)

// Store is the part of the Jenkins API that creates credentials.
type Store interface {
	CreateCredentials(ctx context.Context, payload []byte) error
	CreateFileCredentials(ctx context.Context, payload []byte, fileName string, content io.Reader) error
}

// Provisioner pushes secrets into a Store. Secret values are never logged.
type Provisioner struct {
	store  Store
	fs     afero.Fs
	logger observability.Logger
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithFs sets the filesystem secret files are read from.
func WithFs(fs afero.Fs) Option {
	return func(p *Provisioner) { p.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(p *Provisioner) { p.logger = l }
}

// NewProvisioner creates a Provisioner.
func NewProvisioner(store Store, opts ...Option) *Provisioner {
	p := &Provisioner{
		store:  store,
		fs:     afero.NewOsFs(),
		logger: observability.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetSecretText creates a secret text credential.
func (p *Provisioner) SetSecretText(ctx context.Context, id, secret, description string) error {
	if id == "" {
		return toolerrors.ValidationError("credential id is required", nil)
	}
	if description == "" {
		description = DefaultTextDescription
	}

	p.logger.Debug("Setting text", observability.String("id", id))
	payload, err := textPayload(id, secret, description)
	if err != nil {
		return toolerrors.CredentialsError("failed to encode payload", err)
	}

	if err := p.store.CreateCredentials(ctx, payload); err != nil {
		p.logger.Error("POST failed", observability.String("id", id), observability.Err(err))
		return toolerrors.CredentialsError("failed to set secret text", err).WithContext("id", id)
	}
	return nil
}

// SetSecretFile creates a secret file credential from the named file.
func (p *Provisioner) SetSecretFile(ctx context.Context, id, filename, description string) error {
	if id == "" {
		return toolerrors.ValidationError("credential id is required", nil)
	}
	if description == "" {
		description = DefaultFileDescription
	}

	f, err := p.fs.Open(filename)
	if err != nil {
		return toolerrors.ValidationError("cannot open secret file", err).WithContext("id", id)
	}
	defer f.Close()

	p.logger.Debug("Setting file", observability.String("id", id), observability.String("file", filename))
	payload, err := filePayload(id, description)
	if err != nil {
		return toolerrors.CredentialsError("failed to encode payload", err)
	}

	if err := p.store.CreateFileCredentials(ctx, payload, filepath.Base(filename), f); err != nil {
		p.logger.Error("POST failed", observability.String("id", id), observability.Err(err))
		return toolerrors.CredentialsError("failed to set secret file", err).WithContext("id", id)
	}
	return nil
}

// SetSecretUser creates a username/password credential.
func (p *Provisioner) SetSecretUser(ctx context.Context, id, username, password, description string) error {
	if id == "" {
		return toolerrors.ValidationError("credential id is required", nil)
	}
	if description == "" {
		description = DefaultUserDescription
	}

	p.logger.Debug("Setting username/password", observability.String("id", id))
	payload, err := userPayload(id, username, password, description)
	if err != nil {
		return toolerrors.CredentialsError("failed to encode payload", err)
	}

	if err := p.store.CreateCredentials(ctx, payload); err != nil {
		p.logger.Error("POST failed", observability.String("id", id), observability.Err(err))
		return toolerrors.CredentialsError("failed to set secret user", err).WithContext("id", id)
	}
	return nil
}
