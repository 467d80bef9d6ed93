package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/informaticsmatters/jenkins-utils/pkg/credentials"
	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
)

func newSecretCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Create global credentials",
	}
	cmd.AddCommand(
		newSecretTextCmd(a),
		newSecretFileCmd(a),
		newSecretUserCmd(a),
		newSecretApplyCmd(a),
	)
	return cmd
}

func (a *app) provisioner(cmd *cobra.Command) (*credentials.Provisioner, error) {
	client, _, err := a.connect(cmd.Context())
	if err != nil {
		return nil, err
	}
	return credentials.NewProvisioner(client,
		credentials.WithFs(a.fs),
		credentials.WithLogger(a.logger)), nil
}

// fromFlagOrEnv returns value, or the content of the named environment
// variable. Exactly one of the two must be given.
func fromFlagOrEnv(flag, value, envFlag, envName string) (string, error) {
	switch {
	case value != "" && envName != "":
		return "", toolerrors.ValidationError(fmt.Sprintf("--%s and --%s are mutually exclusive", flag, envFlag), nil)
	case envName != "":
		v, ok := os.LookupEnv(envName)
		if !ok {
			return "", toolerrors.ValidationError(fmt.Sprintf("environment variable %s is not set", envName), nil)
		}
		return v, nil
	case value != "":
		return value, nil
	}
	return "", toolerrors.ValidationError(fmt.Sprintf("one of --%s or --%s is required", flag, envFlag), nil)
}

type secretTextFlags struct {
	value       string
	valueEnv    string
	description string
}

func newSecretTextCmd(a *app) *cobra.Command {
	var f secretTextFlags

	cmd := &cobra.Command{
		Use:   "text <id>",
		Short: "Create a secret text credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := fromFlagOrEnv("value", f.value, "value-env", f.valueEnv)
			if err != nil {
				return err
			}
			p, err := a.provisioner(cmd)
			if err != nil {
				return err
			}
			if err := p.SetSecretText(cmd.Context(), args[0], secret, f.description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created secret text %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&f.value, "value", "", "secret value")
	cmd.Flags().StringVar(&f.valueEnv, "value-env", "", "environment variable holding the secret value")
	cmd.Flags().StringVar(&f.description, "description", "", "credential description")
	return cmd
}

func newSecretFileCmd(a *app) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "file <id> <path>",
		Short: "Create a secret file credential from a local file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.provisioner(cmd)
			if err != nil {
				return err
			}
			if err := p.SetSecretFile(cmd.Context(), args[0], args[1], description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created secret file %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "credential description")
	return cmd
}

type secretUserFlags struct {
	username    string
	password    string
	passwordEnv string
	description string
}

func newSecretUserCmd(a *app) *cobra.Command {
	var f secretUserFlags

	cmd := &cobra.Command{
		Use:   "user <id>",
		Short: "Create a username/password credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := fromFlagOrEnv("password", f.password, "password-env", f.passwordEnv)
			if err != nil {
				return err
			}
			p, err := a.provisioner(cmd)
			if err != nil {
				return err
			}
			if err := p.SetSecretUser(cmd.Context(), args[0], f.username, password, f.description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created secret user %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&f.username, "username", "", "user name")
	cmd.Flags().StringVar(&f.password, "password", "", "password")
	cmd.Flags().StringVar(&f.passwordEnv, "password-env", "", "environment variable holding the password")
	cmd.Flags().StringVar(&f.description, "description", "", "credential description")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newSecretApplyCmd(a *app) *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "apply -f <manifest>",
		Short: "Create every credential listed in a YAML manifest",
		Long: `Create every credential listed in a YAML manifest. Entries are
applied in order and a failure does not stop the remaining entries.
With skip_existing set, credentials the server already has are counted
as skipped rather than failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := credentials.LoadManifest(a.fs, manifest)
			if err != nil {
				return err
			}
			p, err := a.provisioner(cmd)
			if err != nil {
				return err
			}

			summary, err := p.Apply(cmd.Context(), m)
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d, skipped %d, failed %d\n",
				summary.Applied, summary.Skipped, summary.Failed)
			return err
		},
	}

	cmd.Flags().StringVarP(&manifest, "file", "f", "", "manifest file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
