package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/akara/rajaongkir-adapter/internal/optimizer"
	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/internal/shipping"
)

func costCmd() *cobra.Command {
	var (
		origin, destination, weight int
		raw                         bool
	)
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Quote courier services between two destination ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := shipping.ParseCouriers(couriers)
			if err != nil {
				return err
			}
			resp, err := client.DomesticCost(cmd.Context(), rajaongkir.CostRequest{
				Origin:      origin,
				Destination: destination,
				Weight:      weight,
				Courier:     strings.Join(list, ":"),
				Price:       shipping.PriceLowest,
			})
			if err != nil {
				return err
			}
			if raw {
				return printJSON(cmd.OutOrStdout(), resp.Data)
			}
			return printJSON(cmd.OutOrStdout(), optimizer.Optimize(resp.Data))
		},
	}
	cmd.Flags().IntVar(&origin, "origin", 0, "origin destination id")
	cmd.Flags().IntVar(&destination, "destination", 0, "destination id")
	cmd.Flags().IntVar(&weight, "weight", 1000, "parcel weight in grams")
	cmd.Flags().BoolVar(&raw, "raw", false, "print offers as returned, without ranking")
	_ = cmd.MarkFlagRequired("origin")
	_ = cmd.MarkFlagRequired("destination")
	return cmd
}
