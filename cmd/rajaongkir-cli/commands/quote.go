package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/internal/shipping"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

func quoteCmd(defaultOrigin string) *cobra.Command {
	var (
		originPostcode string
		weightKg       float64
		quantity       int
	)
	cmd := &cobra.Command{
		Use:   "quote [destination]",
		Short: "Run a full ranked quote for a single-item cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := shipping.NewService(log,
				shipping.Settings{Couriers: couriers, OriginPostcode: originPostcode},
				rajaongkir.NewDestinationResolver(log, client),
				client,
				nil, nil, nil)

			rates := svc.Quote(cmd.Context(), model.Cart{
				ID:              "cli",
				Items:           []model.CartItem{{SKU: "cli", Weight: weightKg, Quantity: quantity}},
				ShippingAddress: model.Address{Postcode: args[0]},
			})
			if len(rates) == 0 {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "no rates available (run with -v for details)")
			}
			return printJSON(cmd.OutOrStdout(), rates)
		},
	}
	cmd.Flags().StringVar(&originPostcode, "origin-postcode", defaultOrigin, "origin postcode")
	cmd.Flags().Float64Var(&weightKg, "weight", 1, "item weight in kilograms")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "item quantity")
	return cmd
}
