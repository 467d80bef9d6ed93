package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults for optional settings.
const (
	DefaultTokenEnv  = "JENKINS_TOKEN"
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// DefaultConfig returns the default configuration.
// These values are used when no config file is present.
func DefaultConfig() *Config {
	return &Config{
		Jenkins: JenkinsConfig{
			TokenEnv: DefaultTokenEnv,
			Timeout:  DefaultTimeout,
			Retries:  DefaultRetries,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// setDefaults registers every key with viper so environment variables
// are picked up for all of them.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("jenkins.url", d.Jenkins.URL)
	v.SetDefault("jenkins.user", d.Jenkins.User)
	v.SetDefault("jenkins.token_env", d.Jenkins.TokenEnv)
	v.SetDefault("jenkins.timeout", d.Jenkins.Timeout)
	v.SetDefault("jenkins.insecure", d.Jenkins.Insecure)
	v.SetDefault("jenkins.retries", d.Jenkins.Retries)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
