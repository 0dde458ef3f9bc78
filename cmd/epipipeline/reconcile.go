package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsih-artpark/epipipeline-v2/internal/dates"
)

func createReconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <symptom> <sample> <result>",
		Short: "Repair day/month transpositions in one record's dates",
		Long: `Parses the three event dates of a record and repairs swapped day and month
fields. Pass NA for a missing date.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.settings.Bounds(time.Now())
			if err != nil {
				return err
			}
			r, err := dates.NewReconciler(a.settings.Dates.MaxGapDays, b)
			if err != nil {
				return err
			}

			c := r.ReconcileChainExplain(dates.Parse(args[0]), dates.Parse(args[1]), dates.Parse(args[2]))
			out := struct {
				Symptom dates.Date   `json:"symptom"`
				Sample  dates.Date   `json:"sample"`
				Result  dates.Date   `json:"result"`
				Steps   []dates.Step `json:"steps"`
			}{b.Check(c.Symptom), b.Check(c.Sample), b.Check(c.Result), c.Steps}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}
