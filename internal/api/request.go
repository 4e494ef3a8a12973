package api

import "github.com/akara/rajaongkir-adapter/pkg/model"

// RatesRequest is the payload for a shipping-rate quote.
type RatesRequest struct {
	CartID          string         `json:"cartId" example:"cart-1001"`
	Items           []ItemRequest  `json:"items"`
	ShippingAddress AddressRequest `json:"shippingAddress"`
}

// ItemRequest is one cart line. Weight is per unit, in kilograms.
type ItemRequest struct {
	SKU               string  `json:"sku" example:"TSHIRT-M"`
	Weight            float64 `json:"weight" example:"0.5"`
	Quantity          int     `json:"quantity" example:"2"`
	InventorySourceID int64   `json:"inventorySourceId,omitempty"`
}

type AddressRequest struct {
	Postcode string `json:"postcode" example:"12345"`
	City     string `json:"city,omitempty"`
	Address1 string `json:"address1,omitempty"`
}

func toCart(r RatesRequest) model.Cart {
	items := make([]model.CartItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, model.CartItem{
			SKU:               it.SKU,
			Weight:            it.Weight,
			Quantity:          it.Quantity,
			InventorySourceID: it.InventorySourceID,
		})
	}
	return model.Cart{
		ID:    r.CartID,
		Items: items,
		ShippingAddress: model.Address{
			Postcode: r.ShippingAddress.Postcode,
			City:     r.ShippingAddress.City,
			Address1: r.ShippingAddress.Address1,
		},
	}
}
