// Copyright 2026 Informatics Matters. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
)

const (
	// EnvPrefix is the prefix for all environment variables.
	EnvPrefix = "JENKINS_UTILS"
	// ProjectConfigFile is the project-level config file name.
	ProjectConfigFile = ".jenkins-utils.yaml"
	// GlobalConfigDir is the global config directory name.
	GlobalConfigDir = ".jenkins-utils"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Loader loads configuration from files, environment and flags.
type Loader struct {
	projectRoot string
	configFile  string
	skipGlobal  bool
	flags       map[string]*pflag.Flag
}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{flags: make(map[string]*pflag.Flag)}
}

// WithProjectRoot sets the directory searched for the project config.
func (l *Loader) WithProjectRoot(root string) *Loader {
	l.projectRoot = root
	return l
}

// WithConfigFile loads only the given file instead of the global and
// project configs. The file must exist.
func (l *Loader) WithConfigFile(path string) *Loader {
	l.configFile = path
	return l
}

// SkipGlobal skips loading global config.
func (l *Loader) SkipGlobal() *Loader {
	l.skipGlobal = true
	return l
}

// BindFlag makes a command line flag override the given config key
// when the flag is set. A nil flag is ignored.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) *Loader {
	if flag != nil {
		l.flags[key] = flag
	}
	return l
}

// Load loads configuration with full precedence order.
// Environment variables use the form JENKINS_UTILS_<SECTION>__<KEY>,
// e.g. JENKINS_UTILS_JENKINS__URL.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	paths, err := l.configPaths()
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, toolerrors.ConfigError(fmt.Sprintf("failed to read config file: %s", path), err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	for key, flag := range l.flags {
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, toolerrors.ConfigError(fmt.Sprintf("failed to bind flag for %s", key), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, toolerrors.ConfigError("failed to decode config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, toolerrors.ConfigError("config validation failed", err)
	}

	return &cfg, nil
}

// configPaths returns the config files to merge, lowest precedence first.
func (l *Loader) configPaths() ([]string, error) {
	if l.configFile != "" {
		if _, err := os.Stat(l.configFile); err != nil {
			return nil, toolerrors.ConfigError(fmt.Sprintf("config file not found: %s", l.configFile), err)
		}
		return []string{l.configFile}, nil
	}

	var paths []string
	if !l.skipGlobal {
		if homeDir, err := os.UserHomeDir(); err == nil {
			globalPath := filepath.Join(homeDir, GlobalConfigDir, GlobalConfigFile)
			if _, err := os.Stat(globalPath); err == nil {
				paths = append(paths, globalPath)
			}
		}
	}

	root := l.projectRoot
	if root == "" {
		root = "."
	}
	projectPath := filepath.Join(root, ProjectConfigFile)
	if _, err := os.Stat(projectPath); err == nil {
		paths = append(paths, projectPath)
	}

	return paths, nil
}
