package rajaongkir

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// DestinationSearcher is the subset of Client the resolver needs.
type DestinationSearcher interface {
	SearchDomesticDestination(ctx context.Context, keyword string, limit, offset int) (*DestinationResponse, error)
}

// DestinationResolver turns a free-text location (postcode, city, street)
// into the numeric destination id the cost endpoint expects.
type DestinationResolver struct {
	logger *zap.Logger
	search DestinationSearcher
}

func NewDestinationResolver(logger *zap.Logger, search DestinationSearcher) *DestinationResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DestinationResolver{logger: logger, search: search}
}

// Resolve returns the id of the best match for query. ok is false when the
// query is blank or nothing matched; upstream failures come back as err.
func (r *DestinationResolver) Resolve(ctx context.Context, query string) (int, bool, error) {
	if strings.TrimSpace(query) == "" {
		return 0, false, nil
	}

	resp, err := r.search.SearchDomesticDestination(ctx, query, 1, 0)
	if err != nil {
		return 0, false, err
	}
	if resp == nil || len(resp.Data) == 0 {
		r.logger.Info("rajaongkir.destination_not_found", zap.String("query", query))
		return 0, false, nil
	}
	return resp.Data[0].ID, true, nil
}
