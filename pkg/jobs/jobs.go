// Copyright 2026 Informatics Matters. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");

// Package jobs backs up and restores Jenkins job configurations to and
// from a directory holding one <job-name>.xml file per job.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
	"github.com/informaticsmatters/jenkins-utils/pkg/jenkins"
	"github.com/informaticsmatters/jenkins-utils/pkg/observability"
)

// ConfigExt is the file extension of a saved job configuration.
const ConfigExt = ".xml"

// ErrNotDirectory is returned when the source or destination is not an
// existing directory.
var ErrNotDirectory = errors.New("not a directory")

// Server is the part of the Jenkins API used for job transfer.
type Server interface {
	ListJobs(ctx context.Context) ([]jenkins.Job, error)
	JobExists(ctx context.Context, name string) (bool, error)
	GetJobConfig(ctx context.Context, name string) (string, error)
	CreateJob(ctx context.Context, name, configXML string) error
	ReconfigJob(ctx context.Context, name, configXML string) error
}

// Action is what happened to a single job.
type Action string

const (
	ActionSaved        Action = "saved"
	ActionCreated      Action = "created"
	ActionReconfigured Action = "reconfigured"
	ActionSkipped      Action = "skipped"
)

// Result describes the outcome for one job.
type Result struct {
	Job    string
	File   string
	Action Action
	DryRun bool
}

// Manager transfers job configurations between a server and a directory.
type Manager struct {
	server Server
	fs     afero.Fs
	logger observability.Logger
	dryRun bool
	report func(Result)
}

// Option configures a Manager.
type Option func(*Manager)

// WithFs sets the filesystem. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(m *Manager) { m.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(l observability.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithDryRun makes Restore report what it would do without changing the server.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) { m.dryRun = dryRun }
}

// WithReporter registers a callback invoked once per handled job.
func WithReporter(fn func(Result)) Option {
	return func(m *Manager) { m.report = fn }
}

// NewManager creates a Manager for the given server.
func NewManager(server Server, opts ...Option) *Manager {
	m := &Manager{
		server: server,
		fs:     afero.NewOsFs(),
		logger: observability.Nop(),
		report: func(Result) {},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup writes the XML configuration of every job on the server into
// dstDir, which must already exist. It returns the number of jobs written.
func (m *Manager) Backup(ctx context.Context, dstDir string) (int, error) {
	if err := m.requireDir(dstDir); err != nil {
		return 0, err
	}

	m.logger.Debug("Getting job configurations", observability.String("dir", dstDir))

	list, err := m.server.ListJobs(ctx)
	if err != nil {
		return 0, toolerrors.JobsError("failed to list jobs", err)
	}

	numGot := 0
	for _, job := range list {
		if err := jenkins.ValidateJobName(job.Name); err != nil {
			return numGot, toolerrors.JobsError(fmt.Sprintf("cannot save job %q", job.Name), err)
		}

		m.logger.Debug("Getting job", observability.String("job", job.Name))
		cfg, err := m.server.GetJobConfig(ctx, job.Name)
		if err != nil {
			return numGot, toolerrors.JobsError("failed to get job", err).WithContext("job", job.Name)
		}

		path := filepath.Join(dstDir, job.Name+ConfigExt)
		if err := afero.WriteFile(m.fs, path, []byte(cfg), 0o644); err != nil {
			return numGot, toolerrors.JobsError("failed to write job", err).WithContext("job", job.Name)
		}

		numGot++
		m.report(Result{Job: job.Name, File: path, Action: ActionSaved})
	}

	m.logger.Debug("Got jobs", observability.Int("count", numGot))
	return numGot, nil
}

// Restore sends every <name>.xml file in srcDir to the server. Missing jobs
// are created. Existing jobs are reconfigured when force is set and
// skipped otherwise, as are files whose name is not a valid job name.
// It returns the number of jobs created or reconfigured.
func (m *Manager) Restore(ctx context.Context, srcDir string, force bool) (int, error) {
	if err := m.requireDir(srcDir); err != nil {
		return 0, err
	}

	m.logger.Debug("Setting job configurations",
		observability.String("dir", srcDir),
		observability.Bool("force", force),
		observability.Bool("dry_run", m.dryRun))

	files, err := afero.Glob(m.fs, filepath.Join(srcDir, "*"+ConfigExt))
	if err != nil {
		return 0, toolerrors.JobsError("failed to list job files", err)
	}

	numSet := 0
	for _, file := range files {
		if isDir, _ := afero.IsDir(m.fs, file); isDir {
			continue
		}

		name := strings.TrimSuffix(filepath.Base(file), ConfigExt)
		if err := jenkins.ValidateJobName(name); err != nil {
			m.logger.Warn("Skipping file (not a valid job name)",
				observability.String("file", file), observability.Err(err))
			m.report(Result{Job: name, File: file, Action: ActionSkipped, DryRun: m.dryRun})
			continue
		}

		action, err := m.restoreOne(ctx, name, file, force)
		if err != nil {
			return numSet, toolerrors.JobsError("failed to set job", err).WithContext("job", name)
		}

		if action != ActionSkipped {
			numSet++
		}
		m.report(Result{Job: name, File: file, Action: action, DryRun: m.dryRun})
	}

	m.logger.Debug("Set jobs", observability.Int("count", numSet))
	return numSet, nil
}

func (m *Manager) restoreOne(ctx context.Context, name, file string, force bool) (Action, error) {
	exists, err := m.server.JobExists(ctx, name)
	if err != nil {
		return "", err
	}
	if exists && !force {
		m.logger.Debug("Skipping job (already present)", observability.String("job", name))
		return ActionSkipped, nil
	}

	definition, err := afero.ReadFile(m.fs, file)
	if err != nil {
		return "", err
	}

	if exists {
		m.logger.Debug("Reconfiguring job", observability.String("job", name))
		if !m.dryRun {
			if err := m.server.ReconfigJob(ctx, name, string(definition)); err != nil {
				return "", err
			}
		}
		return ActionReconfigured, nil
	}

	m.logger.Debug("Creating job", observability.String("job", name))
	if !m.dryRun {
		if err := m.server.CreateJob(ctx, name, string(definition)); err != nil {
			return "", err
		}
	}
	return ActionCreated, nil
}

func (m *Manager) requireDir(dir string) error {
	isDir, err := afero.IsDir(m.fs, dir)
	if err != nil || !isDir {
		m.logger.Error("Not a directory", observability.String("dir", dir))
		return toolerrors.ValidationError(dir+" is not a directory", ErrNotDirectory)
	}
	return nil
}
