package shipping

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/metrics"
	"github.com/akara/rajaongkir-adapter/internal/optimizer"
	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

// PriceLowest asks the cost endpoint for the cheapest tariff per service.
const PriceLowest = "lowest"

// Settings are the storefront-level shipping options.
type Settings struct {
	Couriers       string // colon-separated allow-list, e.g. "jne:jnt"
	OriginPostcode string // fallback origin when the cart has no single source
}

// Service computes ranked shipping rates for a cart.
type Service struct {
	logger    *zap.Logger
	settings  Settings
	resolver  Resolver
	rates     RateSource
	sources   InventorySources
	mapper    *Mapper
	publisher QuotePublisher
	now       func() time.Time
}

// NewService wires a quote service. sources, prices and pub are optional.
func NewService(
	logger *zap.Logger,
	settings Settings,
	resolver Resolver,
	rates RateSource,
	sources InventorySources,
	prices PriceConverter,
	pub QuotePublisher,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:    logger,
		settings:  settings,
		resolver:  resolver,
		rates:     rates,
		sources:   sources,
		mapper:    NewMapper(prices),
		publisher: pub,
		now:       time.Now,
	}
}

// Quote returns the ranked rates for cart. It never fails: any problem is
// logged and reported as no rates, so checkout keeps working.
func (s *Service) Quote(ctx context.Context, cart model.Cart) []model.RankedRate {
	rates, err := s.quote(ctx, cart)
	if err != nil {
		var f *Failure
		stage := "unknown"
		if errors.As(err, &f) {
			stage = string(f.Stage)
		}
		metrics.IncQuote("failed", stage)
		s.logger.Error("shipping.quote_failed",
			zap.String("cart_id", cart.ID),
			zap.String("stage", stage),
			zap.Error(err))
		return []model.RankedRate{}
	}
	metrics.IncQuote("ok", "")
	return rates
}

// quote is Quote without the fail-soft boundary. Errors are *Failure.
func (s *Service) quote(ctx context.Context, cart model.Cart) ([]model.RankedRate, error) {
	couriers, err := ParseCouriers(s.settings.Couriers)
	if err != nil {
		return nil, fail(StageCouriers, err)
	}
	courier := strings.Join(couriers, ":")

	origin, err := s.resolveOrigin(ctx, cart)
	if err != nil {
		return nil, fail(StageOrigin, err)
	}

	destination, err := s.resolveDestination(ctx, cart.ShippingAddress)
	if err != nil {
		return nil, fail(StageDestination, err)
	}

	weight := WeightGrams(cart.Items)

	resp, err := s.rates.DomesticCost(ctx, rajaongkir.CostRequest{
		Origin:      origin,
		Destination: destination,
		Weight:      weight,
		Courier:     courier,
		Price:       PriceLowest,
	})
	if err != nil {
		return nil, fail(StageCost, err)
	}

	var offers []model.Offer
	if resp != nil {
		offers = resp.Data
	}
	rates := s.mapper.ToRankedRates(optimizer.Optimize(offers))

	s.logger.Info("shipping.quote_computed",
		zap.String("cart_id", cart.ID),
		zap.Int("origin", origin),
		zap.Int("destination", destination),
		zap.Int("weight", weight),
		zap.String("couriers", courier),
		zap.Int("offers", len(offers)),
		zap.Int("rates", len(rates)))

	s.publish(ctx, model.QuoteEvent{
		ID:          uuid.New(),
		CartID:      cart.ID,
		Origin:      origin,
		Destination: destination,
		WeightGrams: weight,
		Couriers:    courier,
		RateCount:   len(rates),
		Cheapest:    cheapest(rates),
		Timestamp:   s.now().UTC(),
	})
	return rates, nil
}

// resolveOrigin prefers the city id of the cart's single inventory source and
// falls back to the configured origin postcode.
func (s *Service) resolveOrigin(ctx context.Context, cart model.Cart) (int, error) {
	ids := sourceIDs(cart.Items)

	switch {
	case len(ids) == 1 && s.sources != nil:
		cityID, ok, err := s.sources.CityID(ctx, ids[0])
		switch {
		case err != nil:
			s.logger.Warn("shipping.inventory_source_lookup_failed",
				zap.String("cart_id", cart.ID),
				zap.Int64("source_id", ids[0]),
				zap.Error(err))
		case ok && cityID > 0:
			return cityID, nil
		default:
			s.logger.Error("shipping.invalid_inventory_source_city",
				zap.String("cart_id", cart.ID),
				zap.Int64("source_id", ids[0]))
		}
	case len(ids) > 1:
		s.logger.Warn("shipping.multi_inventory_source",
			zap.String("cart_id", cart.ID),
			zap.Int64s("sources", ids))
	}

	postcode := strings.TrimSpace(s.settings.OriginPostcode)
	if postcode == "" {
		return 0, fmt.Errorf("%w: origin postcode is not configured", ErrConfiguration)
	}
	id, ok, err := s.resolver.Resolve(ctx, postcode)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: origin postcode %q", ErrResolution, postcode)
	}
	return id, nil
}

func (s *Service) resolveDestination(ctx context.Context, addr model.Address) (int, error) {
	query := DestinationQuery(addr)
	if query == "" {
		return 0, fmt.Errorf("%w: shipping address has no postcode, city or street", ErrResolution)
	}
	id, ok, err := s.resolver.Resolve(ctx, query)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: destination %q", ErrResolution, query)
	}
	return id, nil
}

func (s *Service) publish(ctx context.Context, evt model.QuoteEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuote(ctx, evt); err != nil {
		s.logger.Warn("shipping.quote_publish_failed",
			zap.String("cart_id", evt.CartID),
			zap.Error(err))
	}
}

// ParseCouriers splits a colon-separated allow-list, dropping blank entries.
func ParseCouriers(raw string) ([]string, error) {
	var out []string
	for _, c := range strings.Split(raw, ":") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: courier allow-list %q is empty", ErrConfiguration, raw)
	}
	return out, nil
}

// WeightGrams totals the cart weight. Each unit counts at least one gram and
// the total is never below one gram.
func WeightGrams(items []model.CartItem) int {
	total := 0
	for _, it := range items {
		grams := int(math.Round(it.Weight * 1000))
		total += it.Quantity * max(1, grams)
	}
	return max(1, total)
}

// DestinationQuery picks the first non-blank of postcode, city and street.
func DestinationQuery(addr model.Address) string {
	for _, v := range []string{addr.Postcode, addr.City, addr.Address1} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// sourceIDs returns the distinct non-zero inventory sources in first-seen order.
func sourceIDs(items []model.CartItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	var ids []int64
	for _, it := range items {
		if it.InventorySourceID == 0 {
			continue
		}
		if _, ok := seen[it.InventorySourceID]; ok {
			continue
		}
		seen[it.InventorySourceID] = struct{}{}
		ids = append(ids, it.InventorySourceID)
	}
	return ids
}

func cheapest(rates []model.RankedRate) *decimal.Decimal {
	if len(rates) == 0 {
		return nil
	}
	c := rates[0].Cost
	return &c
}
