package commands

import (
	"github.com/spf13/cobra"
)

func destinationCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "destination [search]",
		Short: "Search domestic destinations by postcode, city or district",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.SearchDomesticDestination(cmd.Context(), args[0], limit, offset)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp.Data)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum matches")
	cmd.Flags().IntVar(&offset, "offset", 0, "matches to skip")
	return cmd
}
