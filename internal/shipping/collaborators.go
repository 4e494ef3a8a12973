package shipping

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

// Resolver maps free text to a RajaOngkir destination id.
type Resolver interface {
	Resolve(ctx context.Context, query string) (id int, ok bool, err error)
}

// RateSource quotes courier services between two destination ids.
type RateSource interface {
	DomesticCost(ctx context.Context, req rajaongkir.CostRequest) (*rajaongkir.CostResponse, error)
}

// InventorySources looks up the RajaOngkir city id configured on an
// inventory source. ok is false when the source is unknown or has no city id.
type InventorySources interface {
	CityID(ctx context.Context, sourceID int64) (cityID int, ok bool, err error)
}

// PriceConverter turns a base-currency cost into the storefront's display price.
type PriceConverter interface {
	Convert(amount decimal.Decimal) decimal.Decimal
}

// QuotePublisher receives a summary of every successful quote.
type QuotePublisher interface {
	PublishQuote(ctx context.Context, evt model.QuoteEvent) error
}

// IdentityPrice displays the base cost unchanged.
type IdentityPrice struct{}

func (IdentityPrice) Convert(amount decimal.Decimal) decimal.Decimal { return amount }
