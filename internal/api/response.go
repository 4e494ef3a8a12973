package api

import (
	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

// RatesResponse lists ranked rates, best first. An empty list means no
// rates are available right now.
type RatesResponse struct {
	CartID string             `json:"cartId"`
	Count  int                `json:"count"`
	Rates  []model.RankedRate `json:"rates"`
}

// DestinationsResponse lists destination matches for a search.
type DestinationsResponse struct {
	Search  string                   `json:"search"`
	Count   int                      `json:"count"`
	Results []rajaongkir.Destination `json:"results"`
}
