package jenkins

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// CredentialsAPI is the createCredentials endpoint of the global domain
// in the system credential store.
const CredentialsAPI = "/credentials/store/system/domain/_/createCredentials"

// CreateCredentials posts a credential payload as the form field "json".
func (c *Client) CreateCredentials(ctx context.Context, payload []byte) error {
	form := url.Values{"json": {string(payload)}}
	_, err := c.post(ctx, CredentialsAPI, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "failed to create credentials")
	}
	return nil
}

// CreateFileCredentials posts a credential payload together with the
// file content in the multipart part "secret".
func (c *Client) CreateFileCredentials(ctx context.Context, payload []byte, fileName string, content io.Reader) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("secret", fileName)
	if err != nil {
		return errors.Wrap(err, "failed to create multipart file")
	}
	if _, err := io.Copy(part, content); err != nil {
		return errors.Wrap(err, "failed to copy secret file")
	}
	if err := mw.WriteField("json", string(payload)); err != nil {
		return errors.Wrap(err, "failed to write json field")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "failed to close multipart body")
	}

	if _, err := c.post(ctx, CredentialsAPI, mw.FormDataContentType(), &body); err != nil {
		return errors.Wrap(err, "failed to create file credentials")
	}
	return nil
}
