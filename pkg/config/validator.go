// Copyright 2026 Informatics Matters. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package config

import (
	"fmt"
	"strings"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// Validate validates a configuration. The server URL is not required
// here; commands that connect call ValidateConnection.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if c.Jenkins.Timeout < 0 {
		return &ValidationError{
			Field:   "jenkins.timeout",
			Value:   c.Jenkins.Timeout,
			Message: "must be non-negative",
		}
	}
	return nil
}

// Validate validates logging configuration.
func (c *LogConfig) Validate() error {
	if !oneOf(c.Level, validLogLevels) {
		return &ValidationError{
			Field:   "log.level",
			Value:   c.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogLevels, ", ")),
		}
	}
	if !oneOf(c.Format, validLogFormats) {
		return &ValidationError{
			Field:   "log.format",
			Value:   c.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLogFormats, ", ")),
		}
	}
	return nil
}

// ValidateConnection checks the settings needed to reach a server.
func (c *JenkinsConfig) ValidateConnection() error {
	if c.URL == "" {
		return &ValidationError{
			Field:   "jenkins.url",
			Message: "must be set (--url, JENKINS_UTILS_JENKINS__URL or config file)",
		}
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return true
		}
	}
	return false
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation error for %s: %s (got: %v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}
