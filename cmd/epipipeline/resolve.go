package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/dsih-artpark/epipipeline-v2/internal/matcher"
	"github.com/dsih-artpark/epipipeline-v2/internal/regions"
	"github.com/dsih-artpark/epipipeline-v2/internal/standardise"
)

func createResolveCmd(a *app) *cobra.Command {
	var stateID, districtID, district, subdistrict, village string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve one place against the region hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			std, err := a.newStandardiser(cmd.Context(), standardise.NopObserver{})
			if err != nil {
				return err
			}

			state := a.settings.StateID()
			if stateID != "" {
				if state, err = regions.ParseID(stateID); err != nil {
					return err
				}
			}
			place := matcher.Place{
				StateID:     state,
				DistrictID:  regions.ParseOrUnresolved(districtID),
				District:    district,
				Subdistrict: subdistrict,
				Village:     village,
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(std.Resolver().Resolve(place))
		},
	}
	cmd.Flags().StringVar(&stateID, "state-id", "", "state id (defaults to settings)")
	cmd.Flags().StringVar(&districtID, "district-id", "", "known district id; skips district matching")
	cmd.Flags().StringVar(&district, "district", "", "district name")
	cmd.Flags().StringVar(&subdistrict, "subdistrict", "", "subdistrict or ULB name")
	cmd.Flags().StringVar(&village, "village", "", "village or ward name")
	return cmd
}
