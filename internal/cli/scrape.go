package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/keith-mcqueen/Temples/internal/fetch"
	"github.com/keith-mcqueen/Temples/internal/output"
	"github.com/keith-mcqueen/Temples/internal/reconcile"
	"github.com/keith-mcqueen/Temples/internal/temples"
)

func (a *App) scrapeCommand() *cobra.Command {
	var (
		out     string
		numRows int
	)
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape and reconcile temple data from the directory, gallery and KML sources",
		Long: `scrape reads the temple directory (with each temple's detail page), the
media gallery and the KML geolocation feed, merges them by temple name and
writes one JSON object keyed by name.

Source URLs come from the configuration (TEMPLES_DIRECTORY_URL,
TEMPLES_MEDIA_URL, TEMPLES_KML_URL).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := fetch.NewClient(fetch.Config{
				Timeout:   a.cfg.Fetch.Timeout,
				UserAgent: a.cfg.Fetch.UserAgent,
				RateLimit: a.cfg.Fetch.RateLimit,
			}, a.log, a.metrics)
			engine := reconcile.NewEngine(nil, a.log, a.metrics)

			store, err := temples.NewBot(a.cfg.Sources, client, engine, numRows, a.log).Run(cmd.Context())
			if err != nil {
				return err
			}

			a.metrics.SetRecordsExported(store.Len())
			if err := output.WriteFile(out, store); err != nil {
				return err
			}
			a.log.Info("export written", zap.String("path", out), zap.Int("temples", store.Len()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "path to the output file (.gz compresses)")
	cmd.Flags().IntVarP(&numRows, "num-rows", "n", -1, "maximum number of temples to export (negative for all)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
