package api

import (
	"fmt"
	"strings"
)

const maxDestinationLimit = 50

func (r RatesRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	for i, it := range r.Items {
		if it.Quantity <= 0 {
			return fmt.Errorf("items[%d].quantity must be greater than 0", i)
		}
		if it.Weight < 0 {
			return fmt.Errorf("items[%d].weight must not be negative", i)
		}
		if it.InventorySourceID < 0 {
			return fmt.Errorf("items[%d].inventorySourceId must not be negative", i)
		}
	}
	a := r.ShippingAddress
	if strings.TrimSpace(a.Postcode) == "" && strings.TrimSpace(a.City) == "" && strings.TrimSpace(a.Address1) == "" {
		return fmt.Errorf("shippingAddress needs a postcode, city or address1")
	}
	return nil
}

func validateDestinationQuery(search string, limit, offset int) error {
	if strings.TrimSpace(search) == "" {
		return fmt.Errorf("search is required")
	}
	if limit < 1 || limit > maxDestinationLimit {
		return fmt.Errorf("limit must be between 1 and %d", maxDestinationLimit)
	}
	if offset < 0 {
		return fmt.Errorf("offset must not be negative")
	}
	return nil
}
