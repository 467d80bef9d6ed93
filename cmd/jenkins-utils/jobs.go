package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/informaticsmatters/jenkins-utils/pkg/jobs"
)

func newJobsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Save or restore job configurations",
	}
	cmd.AddCommand(newJobsGetCmd(a), newJobsSetCmd(a))
	return cmd
}

func newJobsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <dst-dir>",
		Short: "Write every job's config.xml to <dst-dir>/<job>.xml",
		Long: `Write the XML configuration of every job on the server into a
directory, one <job>.xml file per job. The directory must already exist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			m := jobs.NewManager(client,
				jobs.WithFs(a.fs),
				jobs.WithLogger(a.logger),
				jobs.WithReporter(reportJob(out)))

			n, err := m.Backup(cmd.Context(), args[0])
			fmt.Fprintf(out, "Got %d job(s)\n", n)
			return err
		},
	}
}

type jobsSetFlags struct {
	force  bool
	dryRun bool
}

func newJobsSetCmd(a *app) *cobra.Command {
	var f jobsSetFlags

	cmd := &cobra.Command{
		Use:   "set <src-dir>",
		Short: "Create or update jobs from <src-dir>/*.xml",
		Long: `Send every <job>.xml file in a directory to the server. Jobs that do
not exist are created. Existing jobs are left alone unless --force is
given, in which case they are reconfigured.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			m := jobs.NewManager(client,
				jobs.WithFs(a.fs),
				jobs.WithLogger(a.logger),
				jobs.WithDryRun(f.dryRun),
				jobs.WithReporter(reportJob(out)))

			n, err := m.Restore(cmd.Context(), args[0], f.force)
			if f.dryRun {
				fmt.Fprintf(out, "Would set %d job(s)\n", n)
			} else {
				fmt.Fprintf(out, "Set %d job(s)\n", n)
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&f.force, "force", "f", false, "reconfigure jobs that already exist")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show what would be done without doing it")
	return cmd
}

func reportJob(w io.Writer) func(jobs.Result) {
	return func(r jobs.Result) {
		prefix := ""
		if r.DryRun {
			prefix = "(dry-run) "
		}
		fmt.Fprintf(w, "%s%-12s %s\n", prefix, r.Action, r.Job)
	}
}
