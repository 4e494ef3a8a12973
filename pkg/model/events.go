package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteEvent summarises a completed shipping quote for downstream consumers.
type QuoteEvent struct {
	ID          uuid.UUID        `json:"id"`
	CartID      string           `json:"cart_id"`
	Origin      int              `json:"origin"`
	Destination int              `json:"destination"`
	WeightGrams int              `json:"weight_grams"`
	Couriers    string           `json:"couriers"`
	RateCount   int              `json:"rate_count"`
	Cheapest    *decimal.Decimal `json:"cheapest,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
}
