package jenkins

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Job is a top-level job as listed by the server.
type Job struct {
	Name  string `json:"name"`
	URL   string `json:"url"`
	Color string `json:"color"`
}

// jobPath returns the escaped API path of a job.
func jobPath(name string) string {
	return "/job/" + url.PathEscape(name)
}

// ListJobs returns all top-level jobs.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	query := url.Values{"tree": {"jobs[name,url,color]"}}
	resp, err := c.get(ctx, "/api/json?"+query.Encode())
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}

	var root struct {
		Jobs []Job `json:"jobs"`
	}
	if err := json.Unmarshal(resp.body, &root); err != nil {
		return nil, errors.Wrap(err, "failed to decode job list")
	}

	return root.Jobs, nil
}

// JobExists reports whether a job with the given name exists.
func (c *Client) JobExists(ctx context.Context, name string) (bool, error) {
	if err := ValidateJobName(name); err != nil {
		return false, err
	}

	_, err := c.get(ctx, jobPath(name)+"/api/json?tree=name")
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return false, errors.Wrapf(err, "failed to check job %q", name)
}

// GetJobConfig returns the raw XML configuration of a job.
func (c *Client) GetJobConfig(ctx context.Context, name string) (string, error) {
	if err := ValidateJobName(name); err != nil {
		return "", err
	}

	resp, err := c.get(ctx, jobPath(name)+"/config.xml")
	if err != nil {
		return "", errors.Wrapf(err, "failed to get config of job %q", name)
	}
	return string(resp.body), nil
}

// CreateJob creates a new job from an XML configuration.
func (c *Client) CreateJob(ctx context.Context, name, configXML string) error {
	if err := ValidateJobName(name); err != nil {
		return err
	}

	query := url.Values{"name": {name}}
	_, err := c.post(ctx, "/createItem?"+query.Encode(), "application/xml", strings.NewReader(configXML))
	if err != nil {
		return errors.Wrapf(err, "failed to create job %q", name)
	}
	return nil
}

// ReconfigJob replaces the XML configuration of an existing job.
func (c *Client) ReconfigJob(ctx context.Context, name, configXML string) error {
	if err := ValidateJobName(name); err != nil {
		return err
	}

	_, err := c.post(ctx, jobPath(name)+"/config.xml", "application/xml", strings.NewReader(configXML))
	if err != nil {
		return errors.Wrapf(err, "failed to reconfigure job %q", name)
	}
	return nil
}
