// Copyright 2026 Informatics Matters. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package config provides configuration management for jenkins-utils.
//
// Configuration Loading Order (later overrides earlier):
// 1. Defaults (hardcoded)
// 2. Global Config: $HOME/.jenkins-utils/config.yaml
// 3. Project Config: ./.jenkins-utils.yaml (or the file given with --config)
// 4. Environment Variables: JENKINS_UTILS_*
// 5. Command line flags
package config

import (
	"os"
	"time"
)

// Config represents the complete application configuration.
type Config struct {
	Jenkins JenkinsConfig `mapstructure:"jenkins" yaml:"jenkins"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// JenkinsConfig contains the server connection settings.
type JenkinsConfig struct {
	URL      string        `mapstructure:"url" yaml:"url"`
	User     string        `mapstructure:"user" yaml:"user"`
	TokenEnv string        `mapstructure:"token_env" yaml:"token_env"` // e.g., "JENKINS_TOKEN"
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Insecure bool          `mapstructure:"insecure" yaml:"insecure"` // skip TLS verification
	Retries  uint          `mapstructure:"retries" yaml:"retries"`
	// token field is NOT allowed - must use token_env or the URL
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text, json
}

// Token returns the API token from the environment variable named by
// TokenEnv. It is empty when the variable is unset; the token may then
// still be embedded in the URL.
func (c *JenkinsConfig) Token() string {
	if c.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.TokenEnv)
}
