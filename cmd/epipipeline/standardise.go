package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsih-artpark/epipipeline-v2/internal/config"
	"github.com/dsih-artpark/epipipeline-v2/internal/linelist"
	"github.com/dsih-artpark/epipipeline-v2/internal/logging"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
)

func createStandardiseCmd(a *app) *cobra.Command {
	var output string
	var workers int
	var addressFallback bool
	var cleanup config.CleanupSettings

	cmd := &cobra.Command{
		Use:   "standardise [input.csv|input.xlsx]",
		Short: "Standardise a raw line-list",
		Long: `Reads a line-list with standard column names and writes the standardised
records as CSV, to stdout unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if workers > 0 {
				a.settings.Workers = workers
			}
			if cmd.Flags().Changed("address-fallback") {
				a.settings.AddressFallback = addressFallback
			}
			if cmd.Flags().Changed("dedupe") {
				a.settings.Cleanup.Dedupe = cleanup.Dedupe
			}
			if cmd.Flags().Changed("drop-sparse") {
				a.settings.Cleanup.DropSparse = cleanup.DropSparse
			}
			if cmd.Flags().Changed("patient-ids") {
				a.settings.Cleanup.PatientIDs = cleanup.PatientIDs
			}

			rows, err := linelist.ReadFile(args[0])
			if err != nil {
				return err
			}
			a.logger.Info("line-list loaded", "path", args[0], "rows", len(rows))

			std, err := a.newStandardiser(ctx, standardise.LogObserver{Logger: a.logger})
			if err != nil {
				return err
			}

			done := logging.Timed(ctx, a.logger, "standardisation", "rows", len(rows))
			start := time.Now()
			records, err := std.Run(ctx, rows)
			if err != nil {
				return err
			}
			records, removed := std.Cleanup(records)
			done()

			sum := standardise.Summarise(records)
			sum.Removed = removed
			sum.ProcessingTime = time.Since(start)
			a.logger.Info("summary", sum.LogArgs()...)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			out := make([]linelist.Row, len(records))
			for i, r := range records {
				out[i] = r.Row()
			}
			return linelist.WriteCSV(w, standardise.Columns(a.settings.StringFields), out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (overrides settings)")
	cmd.Flags().BoolVar(&addressFallback, "address-fallback", false, "take the village from the address when missing")
	cmd.Flags().BoolVar(&cleanup.Dedupe, "dedupe", false, "drop duplicate standardised records")
	cmd.Flags().BoolVar(&cleanup.DropSparse, "drop-sparse", false, "drop records with fewer than two key fields")
	cmd.Flags().BoolVar(&cleanup.PatientIDs, "patient-ids", false, "group records by patient and assign patient ids")
	return cmd
}
