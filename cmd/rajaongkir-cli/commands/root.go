// Package commands implements the rajaongkir-cli operator tool: one-off
// destination lookups, raw cost calls and full quotes against the live API.
package commands

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/httpclient"
	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/pkg/config"
	"github.com/akara/rajaongkir-adapter/pkg/logger"
)

var (
	baseURL  string
	apiKey   string
	couriers string
	verbose  bool

	client *rajaongkir.Client
	log    *zap.Logger
)

// Execute runs the root command with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	root := &cobra.Command{
		Use:          "rajaongkir-cli",
		Short:        "Query the RajaOngkir shipping-rate API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "warn"
			if verbose {
				level = "debug"
			}
			l, err := logger.New("rajaongkir-cli", cfg.Env, level)
			if err != nil {
				return err
			}
			log = l

			exec := httpclient.New(log, &http.Client{}, nil, nil, httpclient.Options{
				BaseURL:     baseURL,
				APIKey:      apiKey,
				Timeout:     cfg.RequestTimeout,
				MaxRetries:  cfg.MaxRetries,
				Cooldown:    cfg.Cooldown,
				BackoffUnit: cfg.BackoffUnit,
			})
			client = rajaongkir.NewClient(log, exec, nil, nil, rajaongkir.Options{})
			return nil
		},
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url", cfg.BaseURL, "RajaOngkir API base URL")
	root.PersistentFlags().StringVar(&apiKey, "api-key", cfg.APIKey, "RajaOngkir API key (default $RAJAONGKIR_API_KEY)")
	root.PersistentFlags().StringVar(&couriers, "couriers", cfg.Couriers, "colon-separated courier allow-list")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every upstream attempt")

	root.AddCommand(destinationCmd(), costCmd(), quoteCmd(cfg.OriginPostcode))
	return root
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
