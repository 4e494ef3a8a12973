// Package optimizer reduces the raw offer list from the rate API to a short,
// deterministic, ranked assortment.
package optimizer

import (
	"slices"
	"strings"

	"github.com/akara/rajaongkir-adapter/internal/eta"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

// MaxPerCarrier caps how many services a single courier may contribute.
const MaxPerCarrier = 2

// Optimize runs the three stages in order:
//
//  1. keep the cheapest offer per (carrier, ETA bucket), first seen wins ties
//  2. keep at most MaxPerCarrier offers per carrier, best first
//  3. sort by cost, then fastest ETA, then code+service
//
// The result is a fixed point: Optimize(Optimize(x)) equals Optimize(x).
func Optimize(offers []model.Offer) []model.Offer {
	if len(offers) == 0 {
		return []model.Offer{}
	}
	return rank(capPerCarrier(cheapestPerBucket(offers)))
}

type bucketKey struct {
	carrier string
	eta     string
}

// cheapestPerBucket keeps the lowest-cost offer for each (carrier, ETA) bucket.
// Buckets are emitted in first-seen order.
func cheapestPerBucket(offers []model.Offer) []model.Offer {
	index := make(map[bucketKey]int, len(offers))
	out := make([]model.Offer, 0, len(offers))

	for _, o := range offers {
		k := bucketKey{
			carrier: strings.ToLower(o.Code),
			eta:     eta.Normalize(o.ETD).Key(),
		}
		if i, ok := index[k]; ok {
			if o.Cost.LessThan(out[i].Cost) {
				out[i] = o
			}
			continue
		}
		index[k] = len(out)
		out = append(out, o)
	}
	return out
}

// capPerCarrier groups by carrier in first-seen order, orders each group with
// the global ranking and keeps the head of each group.
func capPerCarrier(offers []model.Offer) []model.Offer {
	var order []string
	groups := make(map[string][]model.Offer)

	for _, o := range offers {
		c := strings.ToLower(o.Code)
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], o)
	}

	out := make([]model.Offer, 0, len(offers))
	for _, c := range order {
		list := rank(groups[c])
		if len(list) > MaxPerCarrier {
			list = list[:MaxPerCarrier]
		}
		out = append(out, list...)
	}
	return out
}

func rank(offers []model.Offer) []model.Offer {
	slices.SortStableFunc(offers, Compare)
	return offers
}

// Compare orders offers by cost, then fastest ETA, then the concatenation of
// carrier code and service label.
func Compare(a, b model.Offer) int {
	if c := a.Cost.Cmp(b.Cost); c != 0 {
		return c
	}
	ea, eb := eta.Normalize(a.ETD).Fastest(), eta.Normalize(b.ETD).Fastest()
	if ea != eb {
		if ea < eb {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Code+a.Service, b.Code+b.Service)
}
