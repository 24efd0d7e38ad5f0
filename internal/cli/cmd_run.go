package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/odysseus0/aidigest/internal/classify"
	"github.com/odysseus0/aidigest/internal/config"
	"github.com/odysseus0/aidigest/internal/format"
	"github.com/odysseus0/aidigest/internal/llm"
	"github.com/odysseus0/aidigest/internal/metrics"
	"github.com/odysseus0/aidigest/internal/notify"
	"github.com/odysseus0/aidigest/internal/pipeline"
)

func newRunCmd(getApp func() *App, getOutput func() OutputFormat) *cobra.Command {
	var opts pipeline.RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, summarize and deliver today's digest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := requireApp(getApp)
			if err != nil {
				return err
			}
			cfg := app.cfg

			creds, err := config.LoadCredentials(config.CredentialOptions{
				Provider: cfg.Provider,
				Email:    !opts.DryRun && !opts.NoEmail,
				Chat:     !opts.DryRun && !opts.NoChat,
			})
			if err != nil {
				return err
			}
			facets, err := llm.FacetsByKey(cfg.Facets)
			if err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}
			completer, err := llm.NewCompleter(cfg, creds.LLMAPIKey)
			if err != nil {
				return err
			}

			deps := pipeline.Deps{
				Reader:     app.reader,
				Classifier: classify.Default(),
				Digester:   llm.NewDigester(completer, facets, app.logger),
				Metrics:    metrics.NewRun(),
				Logger:     app.logger,
			}
			if !opts.DryRun && !opts.NoEmail {
				deps.Mailer = notify.NewMailer(cfg, creds)
			}
			if !opts.DryRun && !opts.NoChat {
				deps.Chat = notify.NewTelegram(cfg, creds, nil)
			}

			report, runErr := pipeline.New(cfg, deps).Run(cmd.Context(), opts)
			if runErr != nil && !errors.Is(runErr, pipeline.ErrNoContent) {
				return runErr
			}

			out := cmd.OutOrStdout()
			if opts.DryRun {
				dry := dryRunOutput{
					Report: report,
					Email: dryRunEmail{
						Subject: format.EmailSubject(time.Now(), report.Digests),
						Body:    format.EmailBody(report.Digests),
					},
					Chat: format.ChatMessages(report.Digests, cfg.ChatLimit),
				}
				if getOutput() == OutputJSON {
					if err := writeJSON(out, dry); err != nil {
						return err
					}
				} else {
					writeDryRunText(out, dry)
				}
				return runErr
			}

			if getOutput() == OutputJSON {
				if err := writeJSON(out, report); err != nil {
					return err
				}
				return runErr
			}
			if err := writeRunReportTable(out, report); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Generate the digest and print it instead of delivering")
	cmd.Flags().BoolVar(&opts.NoEmail, "no-email", false, "Skip email delivery")
	cmd.Flags().BoolVar(&opts.NoChat, "no-chat", false, "Skip Telegram delivery")
	return cmd
}
