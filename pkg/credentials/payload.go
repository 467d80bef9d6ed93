package credentials

import (
	"encoding/json"
)

// Credential implementation classes understood by the Jenkins
// credentials plugins.
const (
	ClassStringCredentials           = "org.jenkinsci.plugins.plaincredentials.impl.StringCredentialsImpl"
	ClassFileCredentials             = "org.jenkinsci.plugins.plaincredentials.impl.FileCredentialsImpl"
	ClassUsernamePasswordCredentials = "com.cloudbees.plugins.credentials.impl.UsernamePasswordCredentialsImpl"
)

// ScopeGlobal makes a credential available to all jobs.
const ScopeGlobal = "GLOBAL"

// fileField names the multipart part carrying a secret file's content.
const fileField = "secret"

// Default descriptions per credential kind.
const (
	DefaultTextDescription = "Secret Text"
	DefaultFileDescription = "Secret File"
	DefaultUserDescription = "Secret User"
)

// Kind is a credential type.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
	KindUser Kind = "user"
)

// envelope builds the form payload of a createCredentials request.
// The "" key carries the index of the credential kind in Jenkins' own
// form; a struct tag cannot express it.
func envelope(index string, credentials map[string]string) ([]byte, error) {
	credentials["scope"] = ScopeGlobal
	return json.Marshal(map[string]any{
		"":            index,
		"credentials": credentials,
	})
}

func textPayload(id, secret, description string) ([]byte, error) {
	return envelope("0", map[string]string{
		"id":          id,
		"secret":      secret,
		"description": description,
		"$class":      ClassStringCredentials,
	})
}

func filePayload(id, description string) ([]byte, error) {
	return envelope("4", map[string]string{
		"id":          id,
		"file":        fileField,
		"description": description,
		"$class":      ClassFileCredentials,
	})
}

func userPayload(id, username, password, description string) ([]byte, error) {
	return envelope("4", map[string]string{
		"id":          id,
		"username":    username,
		"password":    password,
		"description": description,
		"$class":      ClassUsernamePasswordCredentials,
	})
}
