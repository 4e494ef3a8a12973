package model

import "github.com/shopspring/decimal"

// Offer is one courier service quote as returned by the rate API.
// Cost is kept in the unit the upstream sends (IDR, no minor units).
type Offer struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Service     string          `json:"service"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
	ETD         string          `json:"etd"`
}

// RankedRate is the carrier-agnostic rate handed back to checkout.
// Position in the returned slice is the rank.
type RankedRate struct {
	Carrier      string          `json:"carrier"`
	Label        string          `json:"label"`
	Method       string          `json:"method"`
	ServiceCode  string          `json:"serviceCode"`
	Description  string          `json:"description"`
	ETA          string          `json:"eta"`
	Cost         decimal.Decimal `json:"cost"`
	DisplayPrice decimal.Decimal `json:"displayPrice"`
}

// Cart is the read-only checkout context a quote is computed for.
type Cart struct {
	ID              string     `json:"id"`
	Items           []CartItem `json:"items"`
	ShippingAddress Address    `json:"shippingAddress"`
}

// CartItem carries the per-unit weight in kilograms.
// InventorySourceID is zero when the item is not bound to a source.
type CartItem struct {
	SKU               string  `json:"sku"`
	Weight            float64 `json:"weight"`
	Quantity          int     `json:"quantity"`
	InventorySourceID int64   `json:"inventorySourceId"`
}

type Address struct {
	Postcode string `json:"postcode"`
	City     string `json:"city"`
	Address1 string `json:"address1"`
}
