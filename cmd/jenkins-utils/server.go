package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
)

func newServerVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "server-version",
		Short: "Connect to the server and print its version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, serverVersion, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), serverVersion)
			return nil
		},
	}
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after merging config files, environment
variables and flags. A token embedded in the URL is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *a.cfg
			if u, err := url.Parse(cfg.Jenkins.URL); err == nil && u.User != nil {
				cfg.Jenkins.URL = u.Redacted()
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(&cfg); err != nil {
				return toolerrors.ConfigError("failed to encode config", err)
			}
			return enc.Close()
		},
	}
}
