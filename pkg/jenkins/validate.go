package jenkins

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// validURLPattern matches safe URL schemes (http/https only)
var validURLPattern = regexp.MustCompile(`^https?://`)

// blockedHostPatterns matches hosts a Jenkins URL must never point at.
// Private networks are allowed since most Jenkins servers live on one.
var blockedHostPatterns = []*regexp.Regexp{
	// AWS/GCP/Azure metadata endpoint
	regexp.MustCompile(`^169\.254\.169\.254$`),
	regexp.MustCompile(`^metadata\.google\.internal$`),
	// AWS IMDS over IPv6
	regexp.MustCompile(`^fd00:ec2::254$`),
}

// validateBaseURL checks the scheme and host of a Jenkins server URL.
func validateBaseURL(rawURL string) (*url.URL, error) {
	if !validURLPattern.MatchString(rawURL) {
		return nil, errors.New("invalid URL scheme: only http and https are allowed")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return nil, errors.New("URL has no hostname")
	}

	for _, pattern := range blockedHostPatterns {
		if pattern.MatchString(strings.ToLower(hostname)) {
			return nil, errors.Newf("refusing to connect to metadata endpoint: %s", hostname)
		}
	}

	return parsed, nil
}

// ValidateJobName rejects names that cannot map to a single top-level job
// or to a single file in a backup directory.
func ValidateJobName(name string) error {
	if name == "" {
		return errors.New("job name cannot be empty")
	}
	if name == "." || strings.Contains(name, "..") {
		return errors.New("job name cannot contain '..'")
	}
	if strings.ContainsAny(name, `/\`) {
		return errors.New("job name cannot contain path separators")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.New("job name cannot contain control characters")
		}
	}
	return nil
}
