// Package main provides the jenkins-utils CLI application.
package main

import (
	"context"
	"net/http"
	"net/url"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/informaticsmatters/jenkins-utils/pkg/config"
	toolerrors "github.com/informaticsmatters/jenkins-utils/pkg/errors"
	"github.com/informaticsmatters/jenkins-utils/pkg/jenkins"
	"github.com/informaticsmatters/jenkins-utils/pkg/observability"
	"github.com/informaticsmatters/jenkins-utils/pkg/version"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configFile string
	url        string
	user       string
	logLevel   string
	insecure   bool
}

// app carries state from the root command into subcommands.
type app struct {
	flags  rootFlags
	fs     afero.Fs
	cfg    *config.Config
	logger observability.Logger

	// httpClient replaces the client's transport; used by tests.
	httpClient *http.Client
}

func newApp() *app {
	return &app{
		fs:     afero.NewOsFs(),
		logger: observability.Nop(),
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jenkins-utils",
		Short: "Jenkins job and credential utilities",
		Long: `jenkins-utils copies job configurations to and from a Jenkins server
and provisions secrets in its global credential store.

The server is given as a URL, usually https://<user>:<token>@<host>,
with --url, the JENKINS_UTILS_JENKINS__URL environment variable or a
config file.`,
		Version:       version.FullString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.flags.configFile, "config", "", "config file (default is ./.jenkins-utils.yaml)")
	flags.StringVar(&a.flags.url, "url", "", "Jenkins server URL")
	flags.StringVar(&a.flags.user, "user", "", "Jenkins user (token read from jenkins.token_env)")
	flags.StringVar(&a.flags.logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.BoolVar(&a.flags.insecure, "insecure", false, "skip TLS certificate verification")

	cmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(a),
		newServerVersionCmd(a),
		newJobsCmd(a),
		newSecretCmd(a),
	)
	return cmd
}

func (a *app) loadConfig(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()

	loader := config.NewLoader().
		BindFlag("jenkins.url", root.Lookup("url")).
		BindFlag("jenkins.user", root.Lookup("user")).
		BindFlag("jenkins.insecure", root.Lookup("insecure")).
		BindFlag("log.level", root.Lookup("log-level"))
	if a.flags.configFile != "" {
		loader = loader.WithConfigFile(a.flags.configFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLoggerWithOptions(observability.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	return nil
}

// connect builds a client and checks the server answers. Nothing is sent
// to a server that cannot be reached.
func (a *app) connect(ctx context.Context) (*jenkins.Client, string, error) {
	jc := a.cfg.Jenkins
	if err := jc.ValidateConnection(); err != nil {
		return nil, "", toolerrors.ConfigError("no server configured", err)
	}

	opts := []jenkins.Option{
		jenkins.WithTimeout(jc.Timeout),
		jenkins.WithInsecureSkipVerify(jc.Insecure),
		jenkins.WithRetry(jc.Retries, jenkins.DefaultRetryDelay),
		jenkins.WithLogger(a.logger),
	}
	if jc.User != "" {
		token := jc.Token()
		switch {
		case token != "":
			opts = append(opts, jenkins.WithBasicAuth(jc.User, token))
		case urlHasToken(jc.URL):
			// Keep the credentials embedded in the URL.
		default:
			a.logger.Warn("No API token found", observability.String("env", jc.TokenEnv))
			opts = append(opts, jenkins.WithBasicAuth(jc.User, ""))
		}
	}
	if a.httpClient != nil {
		opts = append(opts, jenkins.WithHTTPClient(a.httpClient))
	}

	client, err := jenkins.NewClient(jc.URL, opts...)
	if err != nil {
		return nil, "", toolerrors.ConfigError("invalid server URL", err)
	}

	a.logger.Debug("Connecting", observability.String("url", client.BaseURL()))
	serverVersion, err := client.Version(ctx)
	if err != nil {
		return nil, "", toolerrors.ConnectionError("cannot connect to server", err).
			WithContext("url", client.BaseURL())
	}
	a.logger.Info("Connected", observability.String("version", serverVersion))

	return client, serverVersion, nil
}

func urlHasToken(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return false
	}
	_, ok := u.User.Password()
	return ok
}
