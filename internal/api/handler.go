package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/akara/rajaongkir-adapter/internal/httpclient"
	"github.com/akara/rajaongkir-adapter/internal/rajaongkir"
	"github.com/akara/rajaongkir-adapter/pkg/model"
)

// Quoter computes ranked rates for a cart.
type Quoter interface {
	Quote(ctx context.Context, cart model.Cart) []model.RankedRate
}

// ShippingHandler serves rate quotes and destination lookups.
type ShippingHandler struct {
	logger *zap.Logger
	quoter Quoter
	search rajaongkir.DestinationSearcher
}

func NewShippingHandler(logger *zap.Logger, quoter Quoter, search rajaongkir.DestinationSearcher) *ShippingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShippingHandler{logger: logger, quoter: quoter, search: search}
}

// RatesHandler handles POST /api/v1/rates. Upstream trouble yields 200 with
// an empty list so checkout can continue.
func (h *ShippingHandler) RatesHandler(c *fiber.Ctx) error {
	var req RatesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	rates := h.quoter.Quote(c.Context(), toCart(req))

	return c.Status(fiber.StatusOK).JSON(RatesResponse{
		CartID: req.CartID,
		Count:  len(rates),
		Rates:  rates,
	})
}

// DestinationsHandler handles GET /api/v1/destinations?search=&limit=&offset=.
func (h *ShippingHandler) DestinationsHandler(c *fiber.Ctx) error {
	search := c.Query("search")
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)
	if err := validateDestinationQuery(search, limit, offset); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	resp, err := h.search.SearchDomesticDestination(c.Context(), search, limit, offset)
	if err != nil {
		h.logger.Error("api.destination_search_failed",
			zap.String("search", search),
			zap.Error(err))
		var invalid *httpclient.InvalidRequestError
		if errors.As(err, &invalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "destination search unavailable"})
	}

	results := resp.Data
	if results == nil {
		results = []rajaongkir.Destination{}
	}
	return c.Status(fiber.StatusOK).JSON(DestinationsResponse{
		Search:  search,
		Count:   len(results),
		Results: results,
	})
}
