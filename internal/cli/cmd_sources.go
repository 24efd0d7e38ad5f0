package cli

import (
	"github.com/spf13/cobra"

	"github.com/odysseus0/aidigest/internal/fetch"
	"github.com/odysseus0/aidigest/internal/opml"
)

func newSourcesCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List configured feed sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), app.cfg.Sources)
			}
			return writeSourcesTable(cmd.OutOrStdout(), app.cfg.Sources)
		},
	}

	cmd.AddCommand(newSourcesCheckCmd(getApp, getOutput))
	cmd.AddCommand(newSourcesExportCmd(getApp))
	return cmd
}

func newSourcesCheckCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Fetch every source once and report what it serves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			results := make([]fetch.CheckResult, 0, len(app.cfg.Sources))
			for _, src := range app.cfg.Sources {
				res := app.reader.Check(cmd.Context(), src, app.cfg.WindowDays)
				if res.Error != "" {
					app.logger.Warn("source check failed", "source", src.Name, "error", res.Error)
				}
				results = append(results, res)
			}
			if getOutput() == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return writeCheckTable(cmd.OutOrStdout(), results)
		},
	}
}

func newSourcesExportCmd(getApp func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print configured sources as OPML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			return opml.WriteOPML(cmd.OutOrStdout(), app.cfg.Sources)
		},
	}
}
